package content

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/daniilsolovey/sitecontent/internal/db"
)

// createdAtLayout matches ISO-8601 with a numeric offset, also for UTC.
const createdAtLayout = "2006-01-02T15:04:05-07:00"

// InterviewManager applies CRUD operations to the interviews collection.
// Stored order carries no meaning; readers sort by CreatedAt.
type InterviewManager struct {
	docs   *db.Collection[[]Interview]
	assets AssetRemover
	loc    *time.Location
	log    *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewInterviewManager(docs *db.Collection[[]Interview], assets AssetRemover, loc *time.Location, log *slog.Logger) *InterviewManager {
	if loc == nil {
		loc = time.Local
	}

	return &InterviewManager{
		docs:   docs,
		assets: assets,
		loc:    loc,
		log:    log,
		now:    time.Now,
	}
}

// EmptyInterviews is the default for a missing or unreadable interviews file.
func EmptyInterviews() []Interview {
	return []Interview{}
}

// Interviews returns the collection as stored.
func (m *InterviewManager) Interviews(ctx context.Context) ([]Interview, error) {
	interviews, _, err := m.docs.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read interviews: %w", err)
	}

	if interviews == nil {
		return []Interview{}, nil
	}

	return interviews, nil
}

// InterviewByID returns nil when no interview has the id.
func (m *InterviewManager) InterviewByID(ctx context.Context, id int) (*Interview, error) {
	interviews, err := m.Interviews(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByID(interviews, interviewID, id)
	if i < 0 {
		return nil, nil
	}

	return &interviews[i], nil
}

// LatestInterviews returns interviews newest first by CreatedAt, optionally
// only those carrying label. A limit <= 0 returns all of them.
func (m *InterviewManager) LatestInterviews(ctx context.Context, limit int, label *string) ([]Interview, error) {
	interviews, err := m.Interviews(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Interview, 0, len(interviews))
	for _, iv := range interviews {
		if label != nil && *label != "" && !slices.Contains(iv.Labels, *label) {
			continue
		}
		result = append(result, iv)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return parseCreatedAt(result[i].CreatedAt).After(parseCreatedAt(result[j].CreatedAt))
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Save creates an interview when id is 0 and updates it otherwise. The whole
// collection after the change is returned.
func (m *InterviewManager) Save(ctx context.Context, id int, in InterviewInput) ([]Interview, error) {
	if id == 0 {
		_, all, err := m.Create(ctx, in)
		return all, err
	}

	_, all, err := m.Update(ctx, id, in)
	return all, err
}

func (m *InterviewManager) Create(ctx context.Context, in InterviewInput) (Interview, []Interview, error) {
	if err := in.Validate(); err != nil {
		return Interview{}, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	interviews, version, err := m.docs.Read(ctx)
	if err != nil {
		return Interview{}, nil, fmt.Errorf("read interviews: %w", err)
	}

	interview := Interview{
		ID:        nextID(interviews, interviewID),
		Title:     in.Title,
		StaffName: in.StaffName,
		Position:  in.Position,
		JoinDate:  in.JoinDate,
		Labels:    normalizeLabels(in.Labels),
		Content:   in.Content,
		Image:     in.Image,
		CreatedAt: m.now().In(m.loc).Format(createdAtLayout),
	}

	interviews = prepend(interviews, interview)

	if _, err := m.docs.Write(ctx, interviews, version); err != nil {
		return Interview{}, nil, fmt.Errorf("write interviews: %w", err)
	}

	m.log.Info("interview created", "id", interview.ID, "staffName", interview.StaffName)

	return interview, interviews, nil
}

// Update replaces the mutable fields of an interview. The id and createdAt
// are kept, and so is the image when in.Image is empty.
func (m *InterviewManager) Update(ctx context.Context, id int, in InterviewInput) (Interview, []Interview, error) {
	if err := in.Validate(); err != nil {
		return Interview{}, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	interviews, version, err := m.docs.Read(ctx)
	if err != nil {
		return Interview{}, nil, fmt.Errorf("read interviews: %w", err)
	}

	i := indexByID(interviews, interviewID, id)
	if i < 0 {
		return Interview{}, nil, notFound("interview", id)
	}

	iv := &interviews[i]
	iv.Title = in.Title
	iv.StaffName = in.StaffName
	iv.Position = in.Position
	iv.JoinDate = in.JoinDate
	iv.Labels = normalizeLabels(in.Labels)
	iv.Content = in.Content
	if in.Image != "" {
		iv.Image = in.Image
	}

	if _, err := m.docs.Write(ctx, interviews, version); err != nil {
		return Interview{}, nil, fmt.Errorf("write interviews: %w", err)
	}

	m.log.Info("interview updated", "id", id)

	return interviews[i], interviews, nil
}

// Delete removes an interview, unlinks its image best-effort and returns the
// remaining collection.
func (m *InterviewManager) Delete(ctx context.Context, id int) ([]Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	interviews, version, err := m.docs.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read interviews: %w", err)
	}

	i := indexByID(interviews, interviewID, id)
	if i < 0 {
		return nil, notFound("interview", id)
	}

	removed := interviews[i]
	interviews = remove(interviews, i)

	if _, err := m.docs.Write(ctx, interviews, version); err != nil {
		return nil, fmt.Errorf("write interviews: %w", err)
	}

	m.log.Info("interview deleted", "id", id)

	if removed.Image != "" {
		if err := m.assets.Remove(removed.Image); err != nil {
			m.log.Warn("failed to remove interview image", "id", id, "image", removed.Image, "error", err)
		}
	}

	return interviews, nil
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

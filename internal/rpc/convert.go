package rpc

import "github.com/daniilsolovey/sitecontent/internal/content"

type (
	Articles   []Article
	Interviews []Interview
)

func Map[From, To any](list []From, converter func(From) To) []To {
	result := make([]To, len(list))
	for i := range list {
		result[i] = converter(list[i])
	}
	return result
}

func NewArticle(a content.Article) Article {
	return Article{
		ID:        a.ID,
		Date:      a.Date,
		Timestamp: a.Timestamp,
		Category:  a.Category,
		Title:     a.Title,
		Content:   a.Content,
		Image:     a.Image,
		IsNew:     a.IsNew,
	}
}

func NewArticles(in []content.Article) Articles {
	return Map(in, NewArticle)
}

func NewInterview(iv content.Interview) Interview {
	labels := iv.Labels
	if labels == nil {
		labels = []string{}
	}

	return Interview{
		ID:        iv.ID,
		Title:     iv.Title,
		StaffName: iv.StaffName,
		Position:  iv.Position,
		JoinDate:  iv.JoinDate,
		Labels:    labels,
		Content:   iv.Content,
		Image:     iv.Image,
		CreatedAt: iv.CreatedAt,
	}
}

func NewInterviews(in []content.Interview) Interviews {
	return Map(in, NewInterview)
}

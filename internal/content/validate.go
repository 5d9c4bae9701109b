package content

import "strings"

type field struct {
	name  string
	value string
}

func firstMissing(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name}
		}
	}

	return nil
}

func (in ArticleInput) Validate() error {
	return firstMissing(
		field{"category", in.Category},
		field{"title", in.Title},
		field{"content", in.Content},
	)
}

// Validate checks required fields in form order. Labels count as present when
// at least one non-blank label remains after normalizing.
func (in InterviewInput) Validate() error {
	if err := firstMissing(
		field{"title", in.Title},
		field{"staffName", in.StaffName},
		field{"position", in.Position},
		field{"joinDate", in.JoinDate},
	); err != nil {
		return err
	}

	if len(normalizeLabels(in.Labels)) == 0 {
		return &ValidationError{Field: "labels"}
	}

	return firstMissing(field{"content", in.Content})
}

func normalizeLabels(labels []string) []string {
	result := make([]string, 0, len(labels))
	for _, v := range labels {
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				result = append(result, l)
			}
		}
	}

	return result
}

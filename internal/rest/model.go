package rest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/daniilsolovey/sitecontent/internal/content"
)

// Response is the envelope every API call answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Path    string `json:"path,omitempty"`
}

// RecordID accepts an id as a JSON number, a JSON string or a form value.
// Empty and null mean "no id", i.e. create.
type RecordID int

func (id *RecordID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}

	return id.UnmarshalParam(s)
}

// UnmarshalParam implements echo.BindUnmarshaler for form and query values.
func (id *RecordID) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		*id = 0
		return nil
	}

	v, err := strconv.Atoi(param)
	if err != nil {
		return err
	}

	*id = RecordID(v)
	return nil
}

type ArticleRequest struct {
	ID       RecordID `json:"id" form:"id"`
	Password string   `json:"password" form:"password"`
	Category string   `json:"category" form:"category"`
	Title    string   `json:"title" form:"title"`
	Content  string   `json:"content" form:"content"`
	Image    string   `json:"image" form:"image"`
}

func (r ArticleRequest) ToModel() content.ArticleInput {
	return content.ArticleInput{
		Category: r.Category,
		Title:    r.Title,
		Content:  r.Content,
		Image:    r.Image,
	}
}

type InterviewRequest struct {
	ID        RecordID `json:"id" form:"id"`
	Password  string   `json:"password" form:"password"`
	Title     string   `json:"title" form:"title"`
	StaffName string   `json:"staffName" form:"staffName"`
	Position  string   `json:"position" form:"position"`
	JoinDate  string   `json:"joinDate" form:"joinDate"`
	Labels    Labels   `json:"labels" form:"labels"`
	Content   string   `json:"content" form:"content"`
	Image     string   `json:"image" form:"image"`
}

func (r InterviewRequest) ToModel() content.InterviewInput {
	return content.InterviewInput{
		Title:     r.Title,
		StaffName: r.StaffName,
		Position:  r.Position,
		JoinDate:  r.JoinDate,
		Labels:    r.Labels,
		Content:   r.Content,
		Image:     r.Image,
	}
}

// Labels accepts a JSON array, a JSON string or repeated form values. Comma
// separated values are split by the content package, whichever way they came.
type Labels []string

func (l *Labels) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	*l = Labels{s}
	return nil
}

type ArticlesRequest struct {
	Category *string `query:"category"`
	Page     *int    `query:"page"`
	PageSize *int    `query:"pageSize"`
}

type InterviewsRequest struct {
	Limit *int    `query:"limit"`
	Label *string `query:"label"`
}

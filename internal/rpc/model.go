package rpc

type ArticleFilter struct {
	//category optional category filter
	Category *string `json:"category,omitempty"`
	//page=1 page number (1-based)
	Page *int `json:"page,omitempty"`
	//pageSize=10 items per page, at most 100
	PageSize *int `json:"pageSize,omitempty"`
}

type Article struct {
	ID        int    `json:"id"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Image     string `json:"image,omitempty"`
	IsNew     bool   `json:"isNew"`
}

type Interview struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	StaffName string   `json:"staffName"`
	Position  string   `json:"position"`
	JoinDate  string   `json:"joinDate"`
	Labels    []string `json:"labels"`
	Content   string   `json:"content"`
	Image     string   `json:"image,omitempty"`
	CreatedAt string   `json:"createdAt"`
}

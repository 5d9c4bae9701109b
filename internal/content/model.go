package content

// Article is one entry of the news collection. Position in the collection is
// its recency: index 0 is the newest.
type Article struct {
	ID        int    `json:"id"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Image     string `json:"image"`
	IsNew     bool   `json:"isNew"`
}

// NewsDocument is the persisted shape of the news collection.
type NewsDocument struct {
	Articles []Article `json:"articles"`
}

// Interview is one staff interview. Consumers order interviews by CreatedAt.
type Interview struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	StaffName string   `json:"staffName"`
	Position  string   `json:"position"`
	JoinDate  string   `json:"joinDate"`
	Labels    []string `json:"labels"`
	Content   string   `json:"content"`
	Image     string   `json:"image"`
	CreatedAt string   `json:"createdAt"`
}

// ArticleInput holds the caller supplied fields of an article.
type ArticleInput struct {
	Category string
	Title    string
	Content  string
	Image    string
}

// InterviewInput holds the caller supplied fields of an interview.
type InterviewInput struct {
	Title     string
	StaffName string
	Position  string
	JoinDate  string
	Labels    []string
	Content   string
	Image     string
}

// AssetRemover unlinks an uploaded asset referenced by a record.
type AssetRemover interface {
	Remove(path string) error
}

package blogservice

import (
	"time"

	"github.com/luanbartole/powerblog/internal/common"
)

// DateLayout is the format of Post.Date, e.g. "March 05, 2025".
const DateLayout = "January 02, 2006"

type Post struct {
	ID       int    `db:"id"`
	Title    string `db:"title"`
	Subtitle string `db:"subtitle"`
	Date     string `db:"date"`
	// Body is HTML markup, sanitized before it is stored.
	Body     string `db:"body"`
	ImgURL   string `db:"img_url"`
	AuthorID int    `db:"author_id"`
	Author   string `db:"author_name"`
}

type Comment struct {
	ID          int    `db:"id"`
	Text        string `db:"text"`
	AuthorID    int    `db:"author_id"`
	AuthorName  string `db:"author_name"`
	AuthorEmail string `db:"author_email"`
	PostID      int    `db:"post_id"`
}

type PostInput struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,url,max=250"`
	Body     string `form:"body" validate:"required"`
}

type CommentInput struct {
	Text string `form:"comment_text" validate:"required"`
}

type BlogModel struct {
	db *common.DB
}

type BlogService struct {
	m   *BlogModel
	mb  common.MessageProducer
	now func() time.Time
}

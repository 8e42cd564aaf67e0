package blogservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/luanbartole/powerblog/internal/common"
	"github.com/luanbartole/powerblog/internal/userservice"
)

// NewBlogService returns the post and comment service. mb may be nil, in which
// case no comment events are published.
func NewBlogService(db *common.DB, mb common.MessageProducer) *BlogService {
	return &BlogService{
		m:   newBlogModel(db),
		mb:  mb,
		now: time.Now,
	}
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Subtitle = strings.TrimSpace(in.Subtitle)
	in.ImgURL = strings.TrimSpace(in.ImgURL)
	in.Body = strings.TrimSpace(in.Body)
}

func (in *CommentInput) normalize() {
	in.Text = strings.TrimSpace(in.Text)
}

// ValidatePost checks the post form without touching the database.
func ValidatePost(in PostInput) error {
	in.normalize()

	v := common.NewValidator()
	v.CheckStruct(in)
	if !v.Valid() {
		return v.ValidationError()
	}

	return nil
}

// ValidateComment checks the comment form without touching the database.
func ValidateComment(in CommentInput) error {
	in.normalize()

	v := common.NewValidator()
	v.CheckStruct(in)
	if !v.Valid() {
		return v.ValidationError()
	}

	return nil
}

// CreatePost stores a new post dated today and authored by authorID.
func (s *BlogService) CreatePost(ctx context.Context, in PostInput, authorID int) (*Post, error) {
	if err := ValidatePost(in); err != nil {
		return nil, err
	}
	in.normalize()

	p := Post{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Date:     s.now().Format(DateLayout),
		Body:     sanitizeBody(in.Body),
		ImgURL:   in.ImgURL,
		AuthorID: authorID,
	}

	err := s.m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.m.insertPost(ctx, tx, &p)
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetPost returns a post by its ID.
func (s *BlogService) GetPost(ctx context.Context, id int) (*Post, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	return s.m.getPost(ctx, id)
}

// GetPosts returns all posts, oldest first.
func (s *BlogService) GetPosts(ctx context.Context) ([]Post, error) {
	return s.m.getPosts(ctx)
}

// UpdatePost replaces the title, subtitle, image URL and body of a post.
func (s *BlogService) UpdatePost(ctx context.Context, id int, in PostInput) (*Post, error) {
	if err := ValidatePost(in); err != nil {
		return nil, err
	}
	in.normalize()

	if id < 1 {
		return nil, ErrRecordNotFound
	}

	p := Post{
		ID:       id,
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Body:     sanitizeBody(in.Body),
		ImgURL:   in.ImgURL,
	}

	err := s.m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.m.updatePost(ctx, tx, &p)
	})
	if err != nil {
		return nil, err
	}

	return s.m.getPost(ctx, id)
}

// DeletePost deletes a post together with its comments.
func (s *BlogService) DeletePost(ctx context.Context, id int) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	return s.m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.m.deletePost(ctx, tx, id)
	})
}

// AddComment stores a comment by author on post. When a broker is configured a
// comment.created event follows; a failed publish still returns the stored
// comment along with an error wrapping ErrEventPublish.
func (s *BlogService) AddComment(ctx context.Context, post *Post, author *userservice.User, in CommentInput) (*Comment, error) {
	if err := ValidateComment(in); err != nil {
		return nil, err
	}
	in.normalize()

	c := Comment{
		Text:        in.Text,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		PostID:      post.ID,
	}

	err := s.m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.m.insertComment(ctx, tx, &c)
	})
	if err != nil {
		return nil, err
	}

	if s.mb == nil {
		return &c, nil
	}

	msg, err := json.Marshal(common.CommentCreatedEvent{
		PostID:    post.ID,
		PostTitle: post.Title,
		Author:    author.Name,
		Text:      c.Text,
	})
	if err != nil {
		return &c, fmt.Errorf("%w: %v", ErrEventPublish, err)
	}

	if err := s.mb.Publish(ctx, msg, common.CommentCreatedKey, common.BlogExchange); err != nil {
		return &c, fmt.Errorf("%w: %v", ErrEventPublish, err)
	}

	return &c, nil
}

// GetComment returns a comment by its ID.
func (s *BlogService) GetComment(ctx context.Context, id int) (*Comment, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	return s.m.getComment(ctx, id)
}

// GetComments returns the comments of a post in the order they were written.
func (s *BlogService) GetComments(ctx context.Context, postID int) ([]Comment, error) {
	return s.m.getComments(ctx, postID)
}

// DeleteComment deletes a comment. Ownership is checked by the caller.
func (s *BlogService) DeleteComment(ctx context.Context, id int) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	return s.m.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.m.deleteComment(ctx, tx, id)
	})
}

package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/luanbartole/powerblog/internal/common"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateTitle   = errors.New("duplicate title")
	ErrUserForeignKey   = errors.New("author_id does not exist")
	ErrInvalidReference = errors.New("post or author does not exist")
	ErrEventPublish     = errors.New("could not publish event")
)

var postColumns = []string{
	"p.id", "p.title", "p.subtitle", "p.date", "p.body", "p.img_url", "p.author_id", "u.name AS author_name",
}

var commentColumns = []string{
	"c.id", "c.text", "c.author_id", "c.post_id", "u.name AS author_name", "u.email AS author_email",
}

func newBlogModel(db *common.DB) *BlogModel {
	return &BlogModel{db: db}
}

func (m *BlogModel) insertPost(ctx context.Context, tx *sqlx.Tx, p *Post) error {
	query, args, err := m.db.Builder().
		Insert("blog_posts").
		Columns("title", "subtitle", "date", "body", "img_url", "author_id").
		Values(p.Title, p.Subtitle, p.Date, p.Body, p.ImgURL, p.AuthorID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	err = tx.QueryRowxContext(ctx, query, args...).Scan(&p.ID)
	if err != nil {
		switch {
		case common.IsUniqueViolation(err, "blog_posts", "title"):
			return ErrDuplicateTitle
		case common.IsForeignKeyViolation(err):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// getPost returns the post joined with its author's name.
func (m *BlogModel) getPost(ctx context.Context, id int) (*Post, error) {
	query, args, err := m.db.Builder().
		Select(postColumns...).
		From("blog_posts p").
		Join("users u ON u.id = p.author_id").
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p Post
	err = m.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &p, nil
}

// getPosts returns every post in insertion order.
func (m *BlogModel) getPosts(ctx context.Context) ([]Post, error) {
	query, args, err := m.db.Builder().
		Select(postColumns...).
		From("blog_posts p").
		Join("users u ON u.id = p.author_id").
		OrderBy("p.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	posts := []Post{}
	if err := m.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}

	return posts, nil
}

// updatePost changes the editable fields of a post. Date and author are never touched.
func (m *BlogModel) updatePost(ctx context.Context, tx *sqlx.Tx, p *Post) error {
	query, args, err := m.db.Builder().
		Update("blog_posts").
		SetMap(map[string]interface{}{
			"title":    p.Title,
			"subtitle": p.Subtitle,
			"img_url":  p.ImgURL,
			"body":     p.Body,
		}).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		switch {
		case common.IsUniqueViolation(err, "blog_posts", "title"):
			return ErrDuplicateTitle
		default:
			return err
		}
	}

	return expectOneRow(res)
}

// deletePost removes the comments of the post and then the post itself.
func (m *BlogModel) deletePost(ctx context.Context, tx *sqlx.Tx, id int) error {
	query, args, err := m.db.Builder().
		Delete("comments").
		Where(sq.Eq{"post_id": id}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	query, args, err = m.db.Builder().
		Delete("blog_posts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

func (m *BlogModel) insertComment(ctx context.Context, tx *sqlx.Tx, c *Comment) error {
	query, args, err := m.db.Builder().
		Insert("comments").
		Columns("text", "author_id", "post_id").
		Values(c.Text, c.AuthorID, c.PostID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	err = tx.QueryRowxContext(ctx, query, args...).Scan(&c.ID)
	if err != nil {
		switch {
		case common.IsForeignKeyViolation(err):
			return ErrInvalidReference
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) getComment(ctx context.Context, id int) (*Comment, error) {
	query, args, err := m.db.Builder().
		Select(commentColumns...).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(sq.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var c Comment
	err = m.db.GetContext(ctx, &c, query, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *BlogModel) getComments(ctx context.Context, postID int) ([]Comment, error) {
	query, args, err := m.db.Builder().
		Select(commentColumns...).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(sq.Eq{"c.post_id": postID}).
		OrderBy("c.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	comments := []Comment{}
	if err := m.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, err
	}

	return comments, nil
}

func (m *BlogModel) deleteComment(ctx context.Context, tx *sqlx.Tx, id int) error {
	query, args, err := m.db.Builder().
		Delete("comments").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

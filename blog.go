package main

import (
	"context"
	"time"
)

func (a *App) listPosts(ctx context.Context) ([]*Post, error) {
	return a.db.ListPosts(ctx)
}

// getPost loads a post for the given identity. With checkAuthor set, only
// the post's author may have it.
func (a *App) getPost(ctx context.Context, id int64, user *User, checkAuthor bool) (*Post, error) {
	post, err := a.db.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkAuthor && (user == nil || post.AuthorID != user.ID) {
		return nil, ErrForbidden
	}
	return post, nil
}

func (a *App) createPost(ctx context.Context, user *User, form postForm) (int64, error) {
	if err := a.validateForm(form); err != nil {
		return 0, err
	}
	return a.db.CreatePost(ctx, user.ID, form.Title, form.Body, a.now())
}

// updatePost checks existence and ownership before the form is validated.
func (a *App) updatePost(ctx context.Context, user *User, id int64, form postForm) (*Post, error) {
	post, err := a.getPost(ctx, id, user, true)
	if err != nil {
		return nil, err
	}
	if err := a.validateForm(form); err != nil {
		return post, err
	}
	return post, a.db.UpdatePost(ctx, id, form.Title, form.Body)
}

func (a *App) now() time.Time {
	if a.clock != nil {
		return a.clock()
	}
	return time.Now()
}

package collector

import (
	"context"

	"github.com/loganintech/go-reddit/v2/reddit"

	"github.com/qepting91/redelete/internal/domain"
	"github.com/qepting91/redelete/internal/pacing"
)

// APIClient uses script-app password credentials through go-reddit.
type APIClient struct {
	client *reddit.Client
	pacer  *pacing.Pacer
}

func NewAPIClient(id, secret, user, pass, userAgent string, pacer *pacing.Pacer, opts ...reddit.Opt) (*APIClient, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: user, Password: pass}

	client, err := reddit.NewClient(creds, append([]reddit.Opt{reddit.WithUserAgent(userAgent)}, opts...)...)
	if err != nil {
		return nil, err
	}

	return &APIClient{client: client, pacer: pacer}, nil
}

func (ac *APIClient) List(ctx context.Context, account string, kind domain.Kind, after string, limit int) (Listing, error) {
	if err := ac.pacer.Wait(ctx); err != nil {
		return Listing{}, &domain.FetchError{Kind: domain.ErrTransient, Err: err}
	}

	opts := &reddit.ListUserOverviewOptions{
		ListOptions: reddit.ListOptions{Limit: limit, After: after},
		Sort:        "new",
		Time:        "all",
	}

	var out Listing
	if kind == domain.Comment {
		comments, resp, err := ac.client.User.CommentsOf(ctx, account, opts)
		if err != nil {
			return Listing{}, fetchError(err)
		}
		for _, c := range comments {
			out.Items = append(out.Items, fromComment(c))
		}
		out.After = resp.After
		return out, nil
	}

	posts, resp, err := ac.client.User.PostsOf(ctx, account, opts)
	if err != nil {
		return Listing{}, fetchError(err)
	}
	for _, p := range posts {
		out.Items = append(out.Items, fromPost(p))
	}
	out.After = resp.After
	return out, nil
}

func (ac *APIClient) Remove(ctx context.Context, item domain.HistoryItem) error {
	if err := ac.pacer.Wait(ctx); err != nil {
		return &domain.ExecError{ID: item.ID, Kind: domain.ErrTransient, Err: err}
	}

	var err error
	if item.Kind == domain.Comment {
		_, err = ac.client.Comment.Delete(ctx, item.Name)
	} else {
		_, err = ac.client.Post.Delete(ctx, item.Name)
	}
	if err != nil {
		return execError(item, err)
	}
	return nil
}

func fromPost(p *reddit.Post) domain.HistoryItem {
	item := domain.HistoryItem{
		ID:        p.ID,
		Name:      p.FullID,
		Kind:      domain.Post,
		Subreddit: p.SubredditName,
		Score:     p.Score,
		Title:     p.Title,
		Body:      p.Body,
		URL:       p.URL,
	}
	if p.Created != nil {
		item.CreatedAt = p.Created.Time.UTC()
	}
	return item
}

func fromComment(c *reddit.Comment) domain.HistoryItem {
	item := domain.HistoryItem{
		ID:        c.ID,
		Name:      c.FullID,
		Kind:      domain.Comment,
		Subreddit: c.SubredditName,
		Score:     c.Score,
		Body:      c.Body,
		URL:       c.Permalink,
	}
	if c.Created != nil {
		item.CreatedAt = c.Created.Time.UTC()
	}
	return item
}

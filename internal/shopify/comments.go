package shopify

import (
	"context"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

const commentsPageSize = 50

var commentsQuery = `query OrderComments($id: ID!, $first: Int!) {
  order(id: $id) {
    events(first: $first, sortKey: CREATED_AT, reverse: true) {
      nodes {
        __typename
        id
        createdAt
        message
        ... on CommentEvent {
          rawMessage
          author { name }
        }
      }
    }
  }
}`

type eventNode struct {
	Typename   string    `json:"__typename"`
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Message    string    `json:"message"`
	RawMessage string    `json:"rawMessage"`
	Author     *struct {
		Name string `json:"name"`
	} `json:"author"`
}

type commentsData struct {
	Order *struct {
		Events struct {
			Nodes []eventNode `json:"nodes"`
		} `json:"events"`
	} `json:"order"`
}

// OrderComments — комментарии сотрудников из таймлайна заказа (новые сверху).
// Несуществующий заказ — пустой список.
func (c *Client) OrderComments(ctx context.Context, orderID string) ([]domain.Comment, error) {
	var data commentsData
	vars := map[string]any{"id": orderID, "first": commentsPageSize}
	if err := c.do(ctx, "order_comments", commentsQuery, vars, &data); err != nil {
		return nil, err
	}

	comments := []domain.Comment{}
	if data.Order == nil {
		return comments, nil
	}
	for _, ev := range data.Order.Events.Nodes {
		if ev.Typename != "CommentEvent" {
			continue
		}
		msg := ev.RawMessage
		if msg == "" {
			msg = ev.Message
		}
		comment := domain.Comment{ID: ev.ID, Message: msg, CreatedAt: ev.CreatedAt.UTC()}
		if ev.Author != nil {
			comment.Author = ev.Author.Name
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

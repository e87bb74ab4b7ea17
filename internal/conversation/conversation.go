// Package conversation folds a workspace's message log into one summary per
// customer for the inbox view.
package conversation

import (
	"context"
	"sort"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
)

const unknownName = "Unknown"

type MessageLister interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Message, error)
}

type CustomerSnippet struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Email *string   `json:"email,omitempty"`
}

type Summary struct {
	ThreadID      string          `json:"thread_id"`
	CustomerName  string          `json:"customer_name"`
	Contact       string          `json:"customer_contact"`
	LastMessage   string          `json:"last_message"`
	LastMessageAt time.Time       `json:"last_message_at"`
	UnreadCount   int             `json:"unread_count"`
	Channel       string          `json:"channel"`
	Customer      CustomerSnippet `json:"customer"`
}

// List loads the workspace's messages newest first and aggregates them.
func List(ctx context.Context, store MessageLister, workspaceID uuid.UUID) ([]Summary, error) {
	messages, err := store.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return Aggregate(messages), nil
}

// Aggregate groups messages by customer in a single pass. Messages without a
// customer are skipped. The result is ordered by last message time, newest
// first; ties keep the order in which each customer was first seen.
func Aggregate(messages []models.Message) []Summary {
	index := make(map[uuid.UUID]int)
	summaries := make([]Summary, 0)

	for i := range messages {
		m := &messages[i]
		if m.CustomerID == nil || m.Customer == nil {
			continue
		}

		pos, ok := index[*m.CustomerID]
		if !ok {
			index[*m.CustomerID] = len(summaries)
			summaries = append(summaries, newSummary(m))
			continue
		}

		s := &summaries[pos]
		if m.CreatedAt.After(s.LastMessageAt) {
			s.LastMessage = m.Body
			s.LastMessageAt = m.CreatedAt
		}
		if m.Direction == models.DirectionInbound {
			s.UnreadCount++
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries
}

func newSummary(m *models.Message) Summary {
	c := m.Customer
	contact := firstNonEmpty(c.Phone, m.FromNumber, m.ToNumber)

	name := deref(c.Name)
	display := name
	if display == "" {
		display = contact
	}
	if display == "" {
		display = unknownName
	}

	unread := 0
	if m.Direction == models.DirectionInbound {
		unread = 1
	}

	return Summary{
		ThreadID:      "customer-" + c.ID.String(),
		CustomerName:  display,
		Contact:       contact,
		LastMessage:   m.Body,
		LastMessageAt: m.CreatedAt,
		UnreadCount:   unread,
		Channel:       m.Channel,
		Customer: CustomerSnippet{
			ID:    c.ID,
			Name:  name,
			Phone: contact,
			Email: nonEmpty(c.Email),
		},
	}
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

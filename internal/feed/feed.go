package feed

import (
	"context"
	"fmt"

	model "boykot-backend/internal/models"
	"boykot-backend/internal/store"
)

// Service serves the read-mostly announcements feed and channel subscriptions.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Announcements lists announcements newest first, optionally scoped to one
// channel.
func (s *Service) Announcements(ctx context.Context, channelID string, page store.Page) ([]model.Announcement, string, error) {
	q := store.Query{
		Sort: &store.Sort{Field: "publishedAt", Desc: true},
		Page: page,
	}
	if channelID != "" {
		q.Filters = append(q.Filters, store.Filter{Field: "channelId", Op: store.OpEq, Value: channelID})
	}

	var announcements []model.Announcement
	next, err := s.store.ListMany(ctx, store.CollAnnouncements, q, &announcements)
	if err != nil {
		return nil, "", fmt.Errorf("list announcements: %w", err)
	}
	return announcements, next, nil
}

func (s *Service) Channels(ctx context.Context) ([]model.Channel, error) {
	var channels []model.Channel
	if _, err := s.store.ListMany(ctx, store.CollChannels, store.Query{
		Sort: &store.Sort{Field: "name"},
	}, &channels); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

// Subscribe adds the user to a channel. Subscribing twice is a no-op and
// returns the existing record.
func (s *Service) Subscribe(ctx context.Context, userID, channelID string) (model.ChannelSubscription, error) {
	if err := s.store.GetOne(ctx, store.CollChannels, channelID, &model.Channel{}); err != nil {
		return model.ChannelSubscription{}, err
	}

	existing, err := s.find(ctx, userID, channelID)
	if err != nil {
		return model.ChannelSubscription{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	sub := model.ChannelSubscription{UserID: userID, ChannelID: channelID}
	id, err := s.store.Create(ctx, store.CollChannelSubscriptions, "", sub)
	if err != nil {
		return model.ChannelSubscription{}, fmt.Errorf("subscribe: %w", err)
	}
	sub.ID = id
	return sub, nil
}

// Unsubscribe removes the user's subscription and reports whether one existed.
func (s *Service) Unsubscribe(ctx context.Context, userID, channelID string) (bool, error) {
	existing, err := s.find(ctx, userID, channelID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	return s.store.Delete(ctx, store.CollChannelSubscriptions, existing.ID)
}

func (s *Service) Subscriptions(ctx context.Context, userID string) ([]model.ChannelSubscription, error) {
	var subs []model.ChannelSubscription
	if _, err := s.store.ListMany(ctx, store.CollChannelSubscriptions, store.Query{
		Filters: []store.Filter{{Field: "userId", Op: store.OpEq, Value: userID}},
	}, &subs); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *Service) find(ctx context.Context, userID, channelID string) (*model.ChannelSubscription, error) {
	var subs []model.ChannelSubscription
	if _, err := s.store.ListMany(ctx, store.CollChannelSubscriptions, store.Query{
		Filters: []store.Filter{
			{Field: "userId", Op: store.OpEq, Value: userID},
			{Field: "channelId", Op: store.OpEq, Value: channelID},
		},
		Page: store.Page{Size: 1},
	}, &subs); err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return &subs[0], nil
}

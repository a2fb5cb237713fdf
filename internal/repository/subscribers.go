package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"rrtracker/pkg/kv"
	"rrtracker/pkg/util"
)

const (
	activeSetKey      = "subs:active"
	unsubSetKey       = "subs:unsubscribed"
	customerKeyPrefix = "cust:"
)

var ErrInvalidEmail = errors.New("invalid email address")

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RedisSubscriberDirectory manages subscriber sets plus the email to Stripe
// customer mapping used by the billing portal.
type RedisSubscriberDirectory struct {
	store *kv.Store
}

func NewRedisSubscriberDirectory(store *kv.Store) *RedisSubscriberDirectory {
	return &RedisSubscriberDirectory{store: store}
}

// Active returns normalized active addresses minus opt-outs, sorted for
// stable fan-out order.
func (r *RedisSubscriberDirectory) Active(ctx context.Context) ([]string, error) {
	active, err := r.store.SMembers(ctx, activeSetKey)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	unsub, err := r.store.SMembers(ctx, unsubSetKey)
	if err != nil {
		return nil, fmt.Errorf("list unsubscribed: %w", err)
	}

	optedOut := make(map[string]struct{}, len(unsub))
	for _, e := range unsub {
		optedOut[util.NormalizeEmail(e)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(active))
	out := make([]string, 0, len(active))
	for _, e := range active {
		e = util.NormalizeEmail(e)
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		if _, gone := optedOut[e]; gone {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.Strings(out)
	return out, nil
}

// Add puts email in the active set. Rejoining also clears a prior opt-out.
func (r *RedisSubscriberDirectory) Add(ctx context.Context, email string) (string, error) {
	e, err := normalizeValid(email)
	if err != nil {
		return "", err
	}
	if err := r.store.SAdd(ctx, activeSetKey, e); err != nil {
		return "", fmt.Errorf("add subscriber: %w", err)
	}
	if err := r.store.SRem(ctx, unsubSetKey, e); err != nil {
		return "", fmt.Errorf("clear opt-out: %w", err)
	}
	return e, nil
}

// Remove drops email from the active set without marking an opt-out.
func (r *RedisSubscriberDirectory) Remove(ctx context.Context, email string) (string, error) {
	e := util.NormalizeEmail(email)
	if err := r.store.SRem(ctx, activeSetKey, e); err != nil {
		return "", fmt.Errorf("remove subscriber: %w", err)
	}
	return e, nil
}

// Unsubscribe records an opt-out and removes email from the active set.
func (r *RedisSubscriberDirectory) Unsubscribe(ctx context.Context, email string) (string, error) {
	e, err := normalizeValid(email)
	if err != nil {
		return "", err
	}
	if err := r.store.SAdd(ctx, unsubSetKey, e); err != nil {
		return "", fmt.Errorf("record opt-out: %w", err)
	}
	if err := r.store.SRem(ctx, activeSetKey, e); err != nil {
		return "", fmt.Errorf("remove subscriber: %w", err)
	}
	return e, nil
}

// Resubscribe undoes an opt-out.
func (r *RedisSubscriberDirectory) Resubscribe(ctx context.Context, email string) (string, error) {
	e, err := normalizeValid(email)
	if err != nil {
		return "", err
	}
	if err := r.store.SRem(ctx, unsubSetKey, e); err != nil {
		return "", fmt.Errorf("clear opt-out: %w", err)
	}
	if err := r.store.SAdd(ctx, activeSetKey, e); err != nil {
		return "", fmt.Errorf("add subscriber: %w", err)
	}
	return e, nil
}

func (r *RedisSubscriberDirectory) IsUnsubscribed(ctx context.Context, email string) (bool, error) {
	return r.store.SIsMember(ctx, unsubSetKey, util.NormalizeEmail(email))
}

// SetCustomer links email to a Stripe customer id.
func (r *RedisSubscriberDirectory) SetCustomer(ctx context.Context, email, customerID string) error {
	e := util.NormalizeEmail(email)
	if err := r.store.Set(ctx, customerKeyPrefix+e, customerID); err != nil {
		return fmt.Errorf("set customer mapping: %w", err)
	}
	return nil
}

// Customer resolves the Stripe customer id for email, or "" when unknown.
func (r *RedisSubscriberDirectory) Customer(ctx context.Context, email string) (string, error) {
	var id string
	err := r.store.Get(ctx, customerKeyPrefix+util.NormalizeEmail(email), &id)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get customer mapping: %w", err)
	}
	return id, nil
}

func normalizeValid(email string) (string, error) {
	e := util.NormalizeEmail(email)
	if !emailRe.MatchString(e) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return e, nil
}

// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/catalog"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/clock"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/uuid"
)

// # Collaborators

// UserDirectory resolves platform accounts by display name.
type UserDirectory interface {
	LookupUser(ctx context.Context, username string) (userID, displayName string, err error)
}

// Catalog validates the item and media references a tile points to.
type Catalog interface {
	RequireEnabledItems(ctx context.Context, itemIDs []int) error
	FindMedia(ctx context.Context, mediaID string) (*catalog.Media, error)
}

// Activities is the outbound activity-log sink and its read side.
type Activities interface {
	// Record is called once per successful mutation, after commit.
	Record(ctx context.Context, entry activity.Entry)
	List(ctx context.Context, bingoID string, limit, offset int) ([]*activity.View, int, error)
}

// TransitionRecorder counts lifecycle transitions.
type TransitionRecorder interface {
	BingoTransition(transition string)
}

// # Service Layer

// Service orchestrates the lifecycle, roster and grid rules of bingos.
type Service struct {
	store      Store
	users      UserDirectory
	catalog    Catalog
	activities Activities
	metrics    TransitionRecorder
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService constructs a new bingo [Service].
func NewService(store Store, users UserDirectory, catalog Catalog, activities Activities, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		users:      users,
		catalog:    catalog,
		activities: activities,
		clock:      clock,
		logger:     logger,
	}
}

// WithMetrics attaches a transition counter.
func (service *Service) WithMetrics(recorder TransitionRecorder) *Service {
	service.metrics = recorder
	return service
}

// # Scope Resolution

// scope is a bingo loaded for one actor, with the actor's own participation
// and the activities queued for publication after commit.
type scope struct {
	actor       Actor
	bingo       *Bingo
	participant *Participant
	events      []activity.Entry
}

func (s *scope) policy() BingoPolicy {
	return NewBingoPolicy(s.actor, s.participant, s.bingo)
}

func (s *scope) roster() ParticipantPolicy {
	return NewParticipantPolicy(s.actor, s.participant)
}

// emit queues an activity; it is published only if the transaction commits.
func (s *scope) emit(at time.Time, key string, params map[string]any) {
	entry := activity.Entry{
		ID:        uuid.New(),
		BingoID:   s.bingo.ID,
		Key:       key,
		Params:    params,
		CreatedAt: at,
	}
	if !s.actor.Anonymous() {
		actorID := s.actor.UserID
		entry.ActorID = &actorID
	}
	s.events = append(s.events, entry)
}

/*
load resolves a bingo by UUID or slug under the visibility rule.

Returns:
  - *scope: The bingo with the actor's participation
  - error: NotFound when absent or hidden from the actor
*/
func (service *Service) load(ctx context.Context, actor Actor, ref string) (*scope, error) {
	var bingo *Bingo
	var err error

	// Discriminator: ID vs Slug
	if uuid.IsValid(ref) {
		bingo, err = service.store.FindBingoByID(ctx, ref)
	} else {
		bingo, err = service.store.FindBingoBySlug(ctx, ref)
	}
	if err != nil {
		return nil, notFoundAs(err, "bingo.not_found")
	}

	participant, err := participantOf(ctx, service.store, bingo.ID, actor)
	if err != nil {
		return nil, err
	}

	s := &scope{actor: actor, bingo: bingo, participant: participant}
	if !s.policy().CanView() {
		return nil, apperr.NotFound("bingo.not_found")
	}
	return s, nil
}

// participantOf returns the actor's record in the bingo, or nil.
func participantOf(ctx context.Context, store ParticipantStore, bingoID string, actor Actor) (*Participant, error) {
	if actor.Anonymous() {
		return nil, nil
	}
	participant, err := store.FindParticipant(ctx, bingoID, actor.UserID)
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, nil
	}
	return participant, err
}

/*
commit runs apply inside one transaction after re-reading the bingo under a
row lock and re-running guard against the fresh state. Queued activities are
published only once the transaction has committed.

Parameters:
  - s: scope loaded by [Service.load]; refreshed in place
  - guard: status precondition and policy check, run on the locked row
  - apply: the writes
*/
func (service *Service) commit(ctx context.Context, s *scope, guard func(*scope) error, apply func(tx Store, s *scope) error) error {
	err := service.store.Tx(ctx, func(tx Store) error {
		locked, err := tx.LockBingo(ctx, s.bingo.ID)
		if err != nil {
			return notFoundAs(err, "bingo.not_found")
		}

		participant, err := participantOf(ctx, tx, locked.ID, s.actor)
		if err != nil {
			return err
		}

		s.bingo = locked
		s.participant = participant
		s.events = nil

		if guard != nil {
			if err := guard(s); err != nil {
				return err
			}
		}

		return apply(tx, s)
	})
	if err != nil {
		return err
	}

	service.publish(ctx, s.events)
	return nil
}

// publish hands committed activities to the sink.
func (service *Service) publish(ctx context.Context, events []activity.Entry) {
	if service.activities == nil {
		return
	}
	for _, event := range events {
		service.activities.Record(ctx, event)
	}
}

func (service *Service) transition(name string) {
	if service.metrics != nil {
		service.metrics.BingoTransition(name)
	}
}

func (service *Service) today() time.Time {
	return clock.Today(service.clock)
}

// # Error Helpers

// notFoundAs replaces a generic NotFound with a domain-specific key.
func notFoundAs(err error, key string) error {
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return apperr.NotFound(key)
	}
	return err
}

// conflictAs replaces a generic Conflict with a domain-specific key.
func conflictAs(err error, key string) error {
	if apperr.HasCode(err, apperr.CodeConflict) {
		conflict := apperr.Conflict(key)
		conflict.Cause = err
		return conflict
	}
	return err
}

func requireUser(actor Actor) error {
	if actor.Anonymous() {
		return apperr.Unauthorized("auth.required")
	}
	return nil
}

func errMissingOwner(bingoID string) error {
	return fmt.Errorf("bingo %s has no owner", bingoID)
}

func itoa(value int) string {
	return strconv.Itoa(value)
}

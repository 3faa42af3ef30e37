// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
)

// KVBucketNameMeetings is the name of the KV bucket holding meetings.
const KVBucketNameMeetings = "meetings"

// NatsMeetingRepository stores meetings in a NATS KV bucket keyed by UID.
type NatsMeetingRepository struct {
	Meetings INatsKeyValue
}

// NewNatsMeetingRepository creates a meeting repository backed by the given bucket.
func NewNatsMeetingRepository(meetings INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		Meetings: meetings,
	}
}

func (r *NatsMeetingRepository) getEntry(ctx context.Context, meetingUID string) (jetstream.KeyValueEntry, error) {
	if r.Meetings == nil {
		return nil, domain.ErrServiceUnavailable
	}
	return r.Meetings.Get(ctx, meetingUID)
}

func (r *NatsMeetingRepository) unmarshalEntry(ctx context.Context, entry jetstream.KeyValueEntry) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := json.Unmarshal(entry.Value(), &meeting); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling meeting", logging.ErrKey, err)
		return nil, domain.ErrUnmarshal
	}
	return &meeting, nil
}

// Get fetches a meeting by UID.
func (r *NatsMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	meeting, _, err := r.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

// GetWithRevision fetches a meeting along with the KV revision of its entry.
// The revision is the token callers pass to Update to get compare-and-set
// semantics on lifecycle transitions.
func (r *NatsMeetingRepository) GetWithRevision(ctx context.Context, meetingUID string) (meeting *models.Meeting, revision uint64, err error) {
	ctx, span := startKVSpan(ctx, "get", "meeting", meetingUID)
	defer func() { endKVSpan(span, err) }()

	entry, err := r.getEntry(ctx, meetingUID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			slog.WarnContext(ctx, "meeting not found", logging.ErrKey, domain.ErrMeetingNotFound, "meeting_uid", meetingUID)
			return nil, 0, domain.ErrMeetingNotFound
		}
		slog.ErrorContext(ctx, "error getting meeting from NATS KV", logging.ErrKey, err)
		return nil, 0, err
	}

	meeting, err = r.unmarshalEntry(ctx, entry)
	if err != nil {
		return nil, 0, err
	}

	return meeting, entry.Revision(), nil
}

// Exists reports whether a meeting with the given UID is stored.
func (r *NatsMeetingRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	_, err := r.getEntry(ctx, meetingUID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAll returns every stored meeting.
func (r *NatsMeetingRepository) ListAll(ctx context.Context) (meetings []*models.Meeting, err error) {
	ctx, span := startKVSpan(ctx, "list", "meeting", "")
	defer func() { endKVSpan(span, err) }()

	if r.Meetings == nil {
		return nil, domain.ErrServiceUnavailable
	}

	keysLister, err := r.Meetings.ListKeys(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error listing meeting keys from NATS KV", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	meetings = []*models.Meeting{}
	for key := range keysLister.Keys() {
		entry, err := r.getEntry(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				// Deleted between listing and fetching.
				continue
			}
			slog.ErrorContext(ctx, "error getting meeting from NATS KV", logging.ErrKey, err, "meeting_uid", key)
			return nil, domain.ErrInternal
		}

		meeting, err := r.unmarshalEntry(ctx, entry)
		if err != nil {
			slog.ErrorContext(ctx, "error unmarshaling meeting from NATS KV", logging.ErrKey, err, "meeting_uid", key)
			return nil, domain.ErrUnmarshal
		}

		meetings = append(meetings, meeting)
	}

	return meetings, nil
}

// Create stores a new meeting.
func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) (err error) {
	ctx, span := startKVSpan(ctx, "put", "meeting", meeting.UID)
	defer func() { endKVSpan(span, err) }()

	if r.Meetings == nil {
		return domain.ErrServiceUnavailable
	}

	jsonData, err := json.Marshal(meeting)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling meeting", logging.ErrKey, err)
		return domain.ErrInternal
	}

	if _, err := r.Meetings.Put(ctx, meeting.UID, jsonData); err != nil {
		slog.ErrorContext(ctx, "error putting meeting into NATS KV", logging.ErrKey, err)
		return domain.ErrInternal
	}

	return nil
}

// Update writes the meeting only if the entry is still at the given revision.
// A stale revision returns ErrRevisionMismatch.
func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) (err error) {
	ctx, span := startKVSpan(ctx, "update", "meeting", meeting.UID)
	defer func() { endKVSpan(span, err) }()

	if r.Meetings == nil {
		return domain.ErrServiceUnavailable
	}

	jsonData, err := json.Marshal(meeting)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling meeting", logging.ErrKey, err)
		return domain.ErrInternal
	}

	if _, err := r.Meetings.Update(ctx, meeting.UID, jsonData, revision); err != nil {
		if strings.Contains(err.Error(), "wrong last sequence") {
			slog.WarnContext(ctx, "revision mismatch updating meeting", logging.ErrKey, err, "meeting_uid", meeting.UID)
			return domain.ErrRevisionMismatch
		}
		slog.ErrorContext(ctx, "error updating meeting in NATS KV", logging.ErrKey, err)
		return domain.ErrInternal
	}

	return nil
}

// Delete removes the meeting entry, guarded by revision.
func (r *NatsMeetingRepository) Delete(ctx context.Context, meetingUID string, revision uint64) (err error) {
	ctx, span := startKVSpan(ctx, "delete", "meeting", meetingUID)
	defer func() { endKVSpan(span, err) }()

	if r.Meetings == nil {
		return domain.ErrServiceUnavailable
	}

	err = r.Meetings.Delete(ctx, meetingUID, jetstream.LastRevision(revision))
	if err != nil {
		if strings.Contains(err.Error(), "wrong last sequence") {
			slog.WarnContext(ctx, "revision mismatch deleting meeting", logging.ErrKey, err, "meeting_uid", meetingUID)
			return domain.ErrRevisionMismatch
		}
		slog.ErrorContext(ctx, "error deleting meeting from NATS KV", logging.ErrKey, err)
		return domain.ErrInternal
	}

	return nil
}

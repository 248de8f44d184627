package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
)

// GormSessionStore is the durable SessionStore backed by PostgreSQL.
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore creates the durable store.
func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

// Get loads a session with its participants.
func (s *GormSessionStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	var ent model.WatchSession
	err := s.db.WithContext(ctx).Preload("Participants").Where("id = ?", sessionID).First(&ent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		return nil, errs.Database("get session", err)
	}
	return entityToSession(&ent)
}

// Create inserts the session row and its participant rows in one transaction.
func (s *GormSessionStore) Create(ctx context.Context, sess *model.Session) error {
	ent, err := sessionToEntity(sess)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ent).Error; err != nil {
			return err
		}
		return upsertParticipants(tx, sess.ID, sess.Participants)
	})
	return errs.Database("create session", err)
}

// Update writes the session row and reconciles participant rows to match
// the snapshot's participant set.
func (s *GormSessionStore) Update(ctx context.Context, sess *model.Session) error {
	ent, err := sessionToEntity(sess)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.WatchSession{}).Where("id = ?", sess.ID).Updates(map[string]interface{}{
			"status":      ent.Status,
			"video_url":   ent.VideoURL,
			"video_state": ent.VideoState,
			"updated_at":  ent.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrSessionNotFound
		}
		if len(sess.Participants) == 0 {
			return tx.Where("session_id = ?", sess.ID).Delete(&model.SessionParticipant{}).Error
		}
		if err := tx.Where("session_id = ? AND participant_id NOT IN ?", sess.ID, sess.Participants).
			Delete(&model.SessionParticipant{}).Error; err != nil {
			return err
		}
		return upsertParticipants(tx, sess.ID, sess.Participants)
	})
	if errors.Is(err, errs.ErrSessionNotFound) {
		return err
	}
	return errs.Database("update session", err)
}

// Delete removes the session row and its participants. Lifecycle code ends
// sessions via a status write; physical deletion is housekeeping only.
func (s *GormSessionStore) Delete(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.SessionParticipant{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", sessionID).Delete(&model.WatchSession{}).Error
	})
	return errs.Database("delete session", err)
}

func upsertParticipants(tx *gorm.DB, sessionID string, participants []string) error {
	for _, pid := range participants {
		row := &model.SessionParticipant{
			ID:            uuid.New().String(),
			SessionID:     sessionID,
			ParticipantID: pid,
			JoinedAt:      time.Now(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}

func entityToSession(ent *model.WatchSession) (*model.Session, error) {
	sess := &model.Session{
		ID:        ent.ID,
		CreatorID: ent.CreatorID,
		Status:    model.SessionStatus(ent.Status),
		CreatedAt: ent.CreatedAt,
		UpdatedAt: ent.UpdatedAt,
	}
	if ent.VideoURL != nil {
		sess.VideoURL = *ent.VideoURL
	}
	if len(ent.VideoState) > 0 {
		var vs model.VideoState
		if err := json.Unmarshal(ent.VideoState, &vs); err != nil {
			return nil, errs.Database("decode video state", err)
		}
		sess.VideoState = &vs
	}
	sess.Participants = make([]string, 0, len(ent.Participants))
	for _, p := range ent.Participants {
		sess.Participants = append(sess.Participants, p.ParticipantID)
	}
	return sess, nil
}

func sessionToEntity(sess *model.Session) (*model.WatchSession, error) {
	ent := &model.WatchSession{
		ID:        sess.ID,
		CreatorID: sess.CreatorID,
		Status:    string(sess.Status),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	if sess.VideoURL != "" {
		u := sess.VideoURL
		ent.VideoURL = &u
	}
	if sess.VideoState != nil {
		raw, err := json.Marshal(sess.VideoState)
		if err != nil {
			return nil, errs.Database("encode video state", err)
		}
		ent.VideoState = datatypes.JSON(raw)
	}
	return ent, nil
}

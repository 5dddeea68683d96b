package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Preferences are the persisted user settings.
type Preferences struct {
	TutorialSeen   bool   `json:"tutorialSeen"`
	ManualTutorial bool   `json:"isManualTutorial"`
	Locale         string `json:"locale,omitempty"`
}

// Preferences returns the stored settings, or the zero value if none
// were saved.
func (s *Store) Preferences(ctx context.Context) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}
	var p Preferences
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(prefsKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &p) })
	})
	if err != nil {
		return Preferences{}, fmt.Errorf("history: preferences: %w", err)
	}
	return p, nil
}

// SetPreferences replaces the stored settings.
func (s *Store) SetPreferences(ctx context.Context, p Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("history: encode preferences: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error { return txn.Set(prefsKey, data) }); err != nil {
		return fmt.Errorf("history: save preferences: %w", err)
	}
	return nil
}

// ResetTutorial marks the tutorial unseen and manually requested.
func (s *Store) ResetTutorial(ctx context.Context) error {
	p, err := s.Preferences(ctx)
	if err != nil {
		return err
	}
	p.TutorialSeen = false
	p.ManualTutorial = true
	return s.SetPreferences(ctx, p)
}

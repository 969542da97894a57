package localstore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gracechapel/shepherd/internal/model"
)

func (s *Store) CreateSession(userID string) (*model.Session, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	sess := model.Session{
		Token:     hex.EncodeToString(buf),
		UserID:    userID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	err := s.mutate(func(doc *model.Document) error {
		doc.Sessions = append(doc.Sessions, sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) GetSessionUser(token string) (*model.User, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, sess := range doc.Sessions {
		if sess.Token != token {
			continue
		}
		for _, u := range doc.Users {
			if u.ID == sess.UserID {
				return &u, nil
			}
		}
		return nil, nil
	}
	return nil, nil
}

func (s *Store) DeleteSession(token string) error {
	return s.mutate(func(doc *model.Document) error {
		kept := doc.Sessions[:0]
		for _, sess := range doc.Sessions {
			if sess.Token != token {
				kept = append(kept, sess)
			}
		}
		doc.Sessions = kept
		return nil
	})
}

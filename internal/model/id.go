package model

import "github.com/google/uuid"

// NewID returns a prefixed random identifier, e.g. "member-5f0c...".
// Prefixes in use: member, att, fu, tx, leader, admin, sess.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

package localstore

import (
	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
)

func (s *Store) listUsersFiltered(keep func(model.User) bool) ([]model.User, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	var users []model.User
	for _, u := range doc.Users {
		if keep(u) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) ListUsers() ([]model.User, error) {
	return s.listUsersFiltered(func(model.User) bool { return true })
}

func (s *Store) ListLeaders() ([]model.User, error) {
	return s.listUsersFiltered(func(u model.User) bool { return u.Role == model.RoleLeader })
}

func (s *Store) ListAdmins() ([]model.User, error) {
	return s.listUsersFiltered(func(u model.User) bool { return u.Role == model.RoleAdmin })
}

func (s *Store) GetUserByID(id string) (*model.User, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByName(name string) (*model.User, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateUser(u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = model.NewID(string(u.Role))
	}
	err := s.mutate(func(doc *model.Document) error {
		doc.Users = append(doc.Users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUserPassword(userID, passwordHash string) error {
	return s.mutate(func(doc *model.Document) error {
		for i := range doc.Users {
			if doc.Users[i].ID == userID {
				doc.Users[i].Password = ""
				doc.Users[i].PasswordHash = passwordHash
			}
		}
		return nil
	})
}

func (s *Store) DeleteUser(userID string) error {
	return s.mutate(func(doc *model.Document) error {
		var target *model.User
		admins := 0
		for i := range doc.Users {
			if doc.Users[i].Role == model.RoleAdmin {
				admins++
			}
			if doc.Users[i].ID == userID {
				target = &doc.Users[i]
			}
		}
		if target == nil {
			return nil
		}
		if target.Role == model.RoleAdmin && admins <= 1 {
			return store.ErrLastAdmin
		}
		kept := doc.Users[:0]
		for _, u := range doc.Users {
			if u.ID != userID {
				kept = append(kept, u)
			}
		}
		doc.Users = kept
		return nil
	})
}

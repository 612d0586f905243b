// Package memory provides mutex-guarded in-process implementations of the
// repository interfaces. It backs the "memory" database driver and the tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// Store holds every collection behind a single lock so that
// registration and resource updates are serialised against each other.
type Store struct {
	mu            sync.Mutex
	users         map[string]*models.User
	resources     map[string]*models.Resource
	notifications map[string]*models.Notification
	quizResults   map[string]*models.QuizResult
	files         map[string]*models.File
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:         make(map[string]*models.User),
		resources:     make(map[string]*models.Resource),
		notifications: make(map[string]*models.Notification),
		quizResults:   make(map[string]*models.QuizResult),
		files:         make(map[string]*models.File),
	}
}

// NewRepositories wires every repository to one shared store
func NewRepositories() *repositories.Repositories {
	s := NewStore()
	return &repositories.Repositories{
		Users:         &UserRepository{s: s},
		Resources:     &ResourceRepository{s: s},
		Registrations: &RegistrationRepository{s: s},
		Notifications: &NotificationRepository{s: s},
		QuizResults:   &QuizResultRepository{s: s},
		Files:         &FileRepository{s: s},
	}
}

// UserRepository is the in-memory IUserRepository
type UserRepository struct{ s *Store }

func cloneUser(u *models.User) *models.User {
	out := *u
	if u.Preferences != nil {
		out.Preferences = make(map[string]interface{}, len(u.Preferences))
		for k, v := range u.Preferences {
			out.Preferences[k] = v
		}
	}
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		out.LastLoginAt = &at
	}
	return &out
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	user.Email = strings.ToLower(user.Email)
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// ResourceRepository is the in-memory IResourceRepository
type ResourceRepository struct{ s *Store }

func (s *Store) resource(t models.ResourceType, id string) (*models.Resource, error) {
	res, ok := s.resources[id]
	if !ok || res.Type != t {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", t, id))
	}
	return res, nil
}

func (r *ResourceRepository) List(_ context.Context, t models.ResourceType, filter repositories.ResourceFilter) ([]*models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*models.Resource{}
	for _, res := range r.s.resources {
		if res.Type != t {
			continue
		}
		if filter.VisibleTo != nil && !res.VisibleTo(filter.VisibleTo) {
			continue
		}
		c := res.Clone()
		if c.Event != nil {
			c.Event.Registrations = nil
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ResourceRepository) GetByID(_ context.Context, t models.ResourceType, id string) (*models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.resource(t, id)
	if err != nil {
		return nil, err
	}
	c := res.Clone()
	if c.Event != nil {
		c.Event.Registrations = nil
	}
	return c, nil
}

func (r *ResourceRepository) Create(_ context.Context, res *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.resources[res.ID]; exists {
		return apperrors.ErrResourceAlreadyExists
	}
	r.s.resources[res.ID] = res.Clone()
	return nil
}

// Update replaces the mutable part of a record. Seats and the registration log stay as stored.
func (r *ResourceRepository) Update(_ context.Context, res *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, err := r.s.resource(res.Type, res.ID)
	if err != nil {
		return err
	}
	next := res.Clone()
	next.CreatedBy = cur.CreatedBy
	next.CreatedAt = cur.CreatedAt
	next.Downloads = cur.Downloads
	if cur.Event != nil && next.Event != nil {
		next.Event.RegisteredUsers = cur.Event.RegisteredUsers
		next.Event.Registrations = cur.Event.Registrations
	}
	r.s.resources[res.ID] = next
	return nil
}

func (r *ResourceRepository) Delete(_ context.Context, t models.ResourceType, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, err := r.s.resource(t, id); err != nil {
		return err
	}
	delete(r.s.resources, id)
	return nil
}

func (r *ResourceRepository) IncrementDownloads(_ context.Context, t models.ResourceType, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.resource(t, id)
	if err != nil {
		return err
	}
	res.Downloads++
	return nil
}

func (r *ResourceRepository) AddAssignee(_ context.Context, t models.ResourceType, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.resource(t, id)
	if err != nil {
		return err
	}
	if res.Assign(userID) {
		res.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *ResourceRepository) ToggleBookmark(_ context.Context, t models.ResourceType, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.resource(t, id)
	if err != nil {
		return false, err
	}
	return res.ToggleBookmark(userID), nil
}

// RegistrationRepository is the in-memory IRegistrationRepository
type RegistrationRepository struct{ s *Store }

func (r *RegistrationRepository) Register(_ context.Context, eventID string, reg models.Registration, enforceCapacity bool) (*models.RegistrationOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.resource(models.ResourceEvents, eventID)
	if err != nil {
		return nil, err
	}
	if res.Event == nil {
		res.Event = &models.EventDetails{}
	}
	ev := res.Event

	out := &models.RegistrationOutcome{
		EventID:           eventID,
		UserID:            reg.UserID,
		Capacity:          ev.Capacity,
		AlreadyRegistered: ev.HasRegistrant(reg.UserID),
	}
	if !out.AlreadyRegistered {
		if ev.Full() {
			if enforceCapacity {
				return nil, apperrors.NewCustomError(apperrors.ErrCapacityExceeded,
					fmt.Sprintf("event %s is full (%d/%d)", eventID, len(ev.RegisteredUsers), ev.Capacity))
			}
			out.Overbooked = true
		}
		ev.RegisteredUsers = append(ev.RegisteredUsers, reg.UserID)
	}

	data := make(map[string]string, len(reg.Data))
	for k, v := range reg.Data {
		data[k] = v
	}
	reg.Data = data
	ev.Registrations = append(ev.Registrations, reg)
	res.UpdatedAt = reg.CreatedAt
	out.RegisteredCount = len(ev.RegisteredUsers)
	return out, nil
}

func (r *RegistrationRepository) ListRegistrations(_ context.Context, eventID string) ([]models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, err := r.s.resource(models.ResourceEvents, eventID)
	if err != nil {
		return nil, err
	}
	out := []models.Registration{}
	if res.Event != nil {
		out = append(out, res.Event.Registrations...)
	}
	return out, nil
}

// NotificationRepository is the in-memory INotificationRepository
type NotificationRepository struct{ s *Store }

func cloneNotification(n *models.Notification) *models.Notification {
	out := *n
	return &out
}

func (r *NotificationRepository) ListFor(_ context.Context, caller *models.Caller) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*models.Notification{}
	for _, n := range r.s.notifications {
		if n.AddressedTo(caller) {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("notification %s not found", id))
	}
	return cloneNotification(n), nil
}

func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.notifications[n.ID] = cloneNotification(n)
	return nil
}

func (r *NotificationRepository) Update(_ context.Context, id string, upd models.NotificationUpdate) (*models.Notification, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, false, apperrors.NewResourceNotFoundError(fmt.Sprintf("notification %s not found", id))
	}
	changed := false
	if upd.Status != nil && n.Status != *upd.Status {
		n.Status = *upd.Status
		changed = true
	}
	if upd.Read != nil {
		n.Read = *upd.Read
	}
	return cloneNotification(n), changed, nil
}

func (r *NotificationRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[id]; !ok {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("notification %s not found", id))
	}
	delete(r.s.notifications, id)
	return nil
}

// QuizResultRepository is the in-memory IQuizResultRepository
type QuizResultRepository struct{ s *Store }

func (r *QuizResultRepository) Upsert(_ context.Context, result *models.QuizResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := result.UserID + "\x00" + result.QuizID
	if cur, ok := r.s.quizResults[key]; ok {
		result.ID = cur.ID
	}
	stored := *result
	stored.Answers = append(json.RawMessage(nil), result.Answers...)
	r.s.quizResults[key] = &stored
	return nil
}

func (r *QuizResultRepository) ListByUser(_ context.Context, userID string) ([]*models.QuizResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*models.QuizResult{}
	for _, res := range r.s.quizResults {
		if res.UserID == userID {
			c := *res
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// FileRepository is the in-memory IFileRepository
type FileRepository struct{ s *Store }

func (r *FileRepository) Create(_ context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *file
	r.s.files[file.ID] = &c
	return nil
}

func (r *FileRepository) GetByID(_ context.Context, id string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.files[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("file %s not found", id))
	}
	c := *f
	return &c, nil
}

func (r *FileRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.files[id]; !ok {
		return apperrors.ErrResourceNotFound
	}
	delete(r.s.files, id)
	return nil
}

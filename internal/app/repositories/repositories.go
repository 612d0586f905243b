package repositories

import (
	"context"
	"time"

	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/db"
)

// IUserRepository defines the interface for user-related storage operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// ResourceFilter narrows a resource listing. A nil VisibleTo lists every record.
type ResourceFilter struct {
	VisibleTo *models.Caller
}

// IResourceRepository is the generic store for every resource type
type IResourceRepository interface {
	List(ctx context.Context, t models.ResourceType, filter ResourceFilter) ([]*models.Resource, error)
	GetByID(ctx context.Context, t models.ResourceType, id string) (*models.Resource, error)
	Create(ctx context.Context, r *models.Resource) error
	Update(ctx context.Context, r *models.Resource) error
	Delete(ctx context.Context, t models.ResourceType, id string) error
	IncrementDownloads(ctx context.Context, t models.ResourceType, id string) error
	AddAssignee(ctx context.Context, t models.ResourceType, id, userID string) error
	ToggleBookmark(ctx context.Context, t models.ResourceType, id, userID string) (bool, error)
}

// IRegistrationRepository performs the atomic seat check-and-insert for events
type IRegistrationRepository interface {
	Register(ctx context.Context, eventID string, reg models.Registration, enforceCapacity bool) (*models.RegistrationOutcome, error)
	ListRegistrations(ctx context.Context, eventID string) ([]models.Registration, error)
}

// INotificationRepository stores notifications
type INotificationRepository interface {
	ListFor(ctx context.Context, caller *models.Caller) ([]*models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	// Update reports whether this call moved the status. A status equal to
	// the stored one, including one just written by a concurrent call, is not a move.
	Update(ctx context.Context, id string, upd models.NotificationUpdate) (*models.Notification, bool, error)
	Delete(ctx context.Context, id string) error
}

// IQuizResultRepository stores one result per (user, quiz)
type IQuizResultRepository interface {
	Upsert(ctx context.Context, result *models.QuizResult) error
	ListByUser(ctx context.Context, userID string) ([]*models.QuizResult, error)
}

// IFileRepository stores blob metadata
type IFileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	Delete(ctx context.Context, id string) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Users         IUserRepository
	Resources     IResourceRepository
	Registrations IRegistrationRepository
	Notifications INotificationRepository
	QuizResults   IQuizResultRepository
	Files         IFileRepository
}

// NewRepositories initializes the PostgreSQL-backed repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database.Pool),
		Resources:     NewResourceRepository(database.Pool),
		Registrations: NewRegistrationRepository(database),
		Notifications: NewNotificationRepository(database.Pool),
		QuizResults:   NewQuizResultRepository(database.Pool),
		Files:         NewFileRepository(database.Pool),
	}
}

// Package services holds the portal's business logic. Every operation takes the
// resolved *models.Caller explicitly; nil means the request is anonymous.
package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/auth"
	"github.com/yigit/deptportal/internal/pkg/filestorage"
	"github.com/yigit/deptportal/internal/pkg/genai"
	"github.com/yigit/deptportal/internal/pkg/session"
)

// Deps are the collaborators needed to build every service
type Deps struct {
	Repos     *repositories.Repositories
	JWT       *auth.JWTService
	Revoker   session.Revoker
	Storage   filestorage.BlobStore
	Model     genai.Generator
	Publisher Publisher
	Policy    RegistrationPolicy
	MaxUpload int64
	Logger    zerolog.Logger
}

// Services holds all the service instances
type Services struct {
	Auth          *AuthService
	Users         UserService
	Resources     ResourceService
	Registrations RegistrationService
	Notifications NotificationService
	QuizResults   QuizResultService
	Files         FileService
	Generation    GenerationService
}

// NewServices builds every service from deps
func NewServices(d Deps) *Services {
	component := func(name string) zerolog.Logger {
		return d.Logger.With().Str("component", name).Logger()
	}
	return &Services{
		Auth:          NewAuthService(d.Repos.Users, d.JWT, d.Revoker, component("auth")),
		Users:         NewUserService(d.Repos.Users, component("users")),
		Resources:     NewResourceService(d.Repos.Resources, component("resources")),
		Registrations: NewRegistrationService(d.Repos.Resources, d.Repos.Registrations, d.Policy, component("registrations")),
		Notifications: NewNotificationService(d.Repos.Notifications, d.Repos.Resources, d.Publisher, component("notifications")),
		QuizResults:   NewQuizResultService(d.Repos.QuizResults, d.Repos.Resources, component("quiz-results")),
		Files:         NewFileService(d.Repos.Files, d.Repos.Resources, d.Storage, d.MaxUpload, component("files")),
		Generation:    NewGenerationService(d.Model, component("generation")),
	}
}

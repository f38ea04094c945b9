package providers

import (
	"github.com/samber/do/v2"

	"github.com/campuswall/campuswall-server/internal/auth"
	"github.com/campuswall/campuswall-server/internal/logger"
	"github.com/campuswall/campuswall-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	userHandle := do.MustInvoke[*UserStoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(userHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	userHandle := do.MustInvoke[*UserStoreHandle](i)
	boardHandle := do.MustInvoke[*BoardStoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(userHandle.Store, boardHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvidePostService provides the post, vote, and reply service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	boardHandle := do.MustInvoke[*BoardStoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(boardHandle.Store, searchHandle.Index, log.Logger), nil
}

// ProvideProfileService provides the profile and verification service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	boardHandle := do.MustInvoke[*BoardStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(boardHandle.Store, sseHandle.Manager, log.Logger), nil
}

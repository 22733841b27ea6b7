package service

import (
	"log/slog"

	"dataroom/internal/domain/repositories"
	"dataroom/internal/domain/services"
	"dataroom/internal/service/auth"
)

// Services bundles every domain service built over one repository set
type Services struct {
	Users      services.UserService
	DataRooms  services.DataRoomService
	Folders    services.FolderService
	Files      services.FileService
	Authorizer services.ResourceAuthorizer
}

// NewServices wires the domain services
func NewServices(repos repositories.Set, store services.ContentStore, issuer services.TokenIssuer, logger *slog.Logger) *Services {
	authorizer := auth.NewOwnerBasedAuthorizer(repos.DataRooms, repos.Folders, repos.Files)

	return &Services{
		Users:      NewUserService(repos.Users, repos.DataRooms, repos.Folders, repos.Files, store, issuer, repos.TxManager, logger),
		DataRooms:  NewDataRoomService(repos.DataRooms, repos.Folders, repos.Files, store, repos.TxManager, authorizer, logger),
		Folders:    NewFolderService(repos.DataRooms, repos.Folders, repos.Files, store, repos.TxManager, authorizer, logger),
		Files:      NewFileService(repos.Files, store, repos.TxManager, authorizer, logger),
		Authorizer: authorizer,
	}
}

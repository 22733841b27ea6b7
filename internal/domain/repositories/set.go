package repositories

// Set groups one backend's repositories with its transaction manager
type Set struct {
	Users     UserRepository
	DataRooms DataRoomRepository
	Folders   FolderRepository
	Files     FileRepository
	TxManager TransactionManager
}

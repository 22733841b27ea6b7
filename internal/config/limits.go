package config

const (
	// MaxDataRoomNameLength matches the name column of data_rooms (VARCHAR(100))
	MaxDataRoomNameLength = 100

	// MaxFolderNameLength matches the name column of folders (VARCHAR(100))
	MaxFolderNameLength = 100

	// MaxFileNameLength matches the name column of files (VARCHAR(100)).
	// The name is also the on-disk leaf, so it must stay a single path segment.
	MaxFileNameLength = 100

	// MaxUsernameLength matches users.username (VARCHAR(50))
	MaxUsernameLength = 50

	// MaxEmailLength matches users.email (VARCHAR(120))
	MaxEmailLength = 120

	// MaxLogFiles is how many timestamped log files SetupLogFile keeps
	MaxLogFiles = 10
)

package account

// Level is the privilege level a player holds on the server.
type Level int16

const (
	LevelPlayer Level = iota
	LevelAdministrator
	LevelManagement
)

func (l Level) String() string {
	switch l {
	case LevelAdministrator:
		return "administrator"
	case LevelManagement:
		return "management"
	default:
		return "player"
	}
}

// Record is the persisted shape of a player's account.
type Record struct {
	UserID       uint64
	BankBalance  int64 // minor units
	IsRegistered bool
	Level        Level
	IsVip        bool
	GangID       uint64 // 0 when not in a gang
}

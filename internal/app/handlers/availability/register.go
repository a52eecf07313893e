package availability

import (
	"roomfinder/internal/app/dto"
	"roomfinder/internal/app/queries"
)

// Register wires both availability tools into bus.
func Register(bus *queries.InMemoryBus, check *CheckRoomHandler, find *FindWindowsHandler) {
	queries.RegisterHandler[CheckRoomQuery, dto.CheckRoomResult](bus, CheckRoomKey, check)
	queries.RegisterHandler[FindWindowsQuery, dto.WindowsResult](bus, FindWindowsKey, find)
}

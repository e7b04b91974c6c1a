package common

// ArchiveExtension is the file suffix used for exported boards.
const ArchiveExtension = ".motionboard"

// DefaultBoardName is used when a board is created without a name.
const DefaultBoardName = "Untitled Board"

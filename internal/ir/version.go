package ir

// IRVersion is the IR schema version. Bump on any wire-format change.
const IRVersion = "1"

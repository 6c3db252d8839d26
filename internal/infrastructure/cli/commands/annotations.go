package commands

// AnnotationNoContainer marks commands that run without loading config or opening the store.
const AnnotationNoContainer = "robloxcoder/no-container"

// AnnotationJSONLogs asks the root command to build the container with JSON logs.
const AnnotationJSONLogs = "robloxcoder/json-logs"

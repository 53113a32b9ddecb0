package domain

// KeyPrefix namespaces every key the service writes to a shared KV backend.
const KeyPrefix = "gitaverse:"

package domain

// KeyPrefix namespaces every key the service writes to the KV store.
const KeyPrefix = "askdex:"

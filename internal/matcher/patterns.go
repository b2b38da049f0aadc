package matcher

// OnionURLPattern matches onion service URLs with an optional scheme, a host
// of letters, digits, hyphens, and dots, and an optional path or query string.
// It is the recommended URL pattern for channel sources.
const OnionURLPattern = `(https?:\/\/)?([a-zA-Z0-9\-\.]+)\.onion(\/[a-zA-Z0-9\-\.\/\?\=\&\%]*)?`

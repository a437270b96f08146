// Package sdk provides an HTTP client for a remote topix API server.
//
// Unlike the root topix package, which embeds the engine and talks to Redis
// directly, this client goes through the REST API and never needs database
// access.
//
//	client := sdk.New("https://topix.internal", sdk.WithAPIKey("secret"))
//	res, _ := client.Namespace("forum").Assign(ctx, sdk.Document{
//	    ID: "post-17", Text: "kubernetes operator keeps crashing",
//	})
package sdk

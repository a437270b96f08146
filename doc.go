// Package topix provides an embedded Go client for the topix clustering
// engine backed by Redis with search modules.
//
// Topix groups short community texts into topic clusters two ways:
//   - Incremental: one document at a time against live centroids
//   - Batch: a window of documents regrouped from scratch by shared vocabulary
//
// # Low-level API — explicit control
//
//	client, _ := topix.New(topix.WithRedis([]string{"localhost:6379"}, ""),
//	    topix.WithEmbedder(myEmbedder),
//	)
//	res, _ := client.Namespace("forum").Assign(ctx, topix.Document{
//	    ID: "post-17", Text: "kubernetes operator keeps crashing",
//	})
//	fmt.Println(res.ClusterID, res.Created)
//
// # High-level API — schema-first with Go generics
//
//	type Post struct {
//	    ID   string `topix:"id"`
//	    Body string `topix:"body,text"`
//	}
//
//	topics, _ := topix.NewTopics[Post](client, "forum")
//	res, _ := topics.Assign(ctx, post)
//	groups, _ := topics.Recluster(ctx, posts)
package topix

// Package gitaverse embeds the Bhagavad Gita verse assistant in a Go program.
//
// The client owns a local SQLite verse store. Load a corpus once with Ingest,
// then ask questions in one of two modes:
//   - ModeSimilarity returns the verse closest to the question
//   - ModeGrounded asks a text generator for guidance and resolves the verse it cites
//
// # Similarity only
//
//	client, _ := gitaverse.New(ctx, gitaverse.WithDatabase("gita.db"))
//	defer client.Close()
//	f, _ := os.Open("bhagavad_gita.json")
//	report, _ := client.Ingest(ctx, f)
//	reply, _ := client.Ask(ctx, "how should I act without attachment?", "")
//	fmt.Println(reply.Text)
//
// # Grounded answers
//
//	client, _ := gitaverse.New(ctx,
//	    gitaverse.WithDatabase("gita.db"),
//	    gitaverse.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "", "gpt-4o-mini"),
//	    gitaverse.WithTokenBudget(200_000, 0, true),
//	    gitaverse.WithSimilarityFallback(),
//	)
//	reply, _ := client.Ask(ctx, "I am afraid of failing", gitaverse.ModeGrounded)
//	fmt.Println(reply.Condition, reply.Verse.Reference)
package gitaverse

// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the question pipeline to function:
//
//   - EmbeddingService: Generates query and chunk embeddings
//   - GenerationService: Produces grounded answers
//   - RerankScorer: Cross-encoder relevance scoring
//   - IndexLoader: Loads per-course semantic indexes
//   - TurnStore: Conversation persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ImageStore: Page image lookup. Without it, answers carry no images.
//   - PromptStore: Custom prompt templates. Without it, embedded defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

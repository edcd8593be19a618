// Package ports declares the boundary interfaces of the orchestration
// core: session persistence, the tool gateway, and the reasoning
// collaborator. Adapters implement these; the engine and workflows only
// ever see the interfaces.
package ports

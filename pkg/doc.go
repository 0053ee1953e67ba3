// Package pkg provides the libraries behind dotpipe, a driver for the
// Graphviz layout executables.
//
// # Overview
//
// dotpipe runs dot, neato and the other Graphviz layout programs as
// subprocesses. The pkg directory is organized as follows:
//
//  1. [backend] - Command construction, subprocess execution and the render/pipe façade
//  2. [source] - DOT text bundled with its file location and layout settings
//  3. [cache], [history] - Result caching and run records
//  4. [server] - The HTTP API
//  5. [config], [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// A request flows through the packages like this:
//
//	Request{Engine, Format, Renderer, Formatter}
//	         ↓
//	    [backend.BuildCommand] (validate, build "dot -K<engine> -T<format>")
//	         ↓
//	    [backend.Runner] (spawn, feed stdin, capture stdout/stderr)
//	         ↓
//	    rendered bytes, or a file next to the source
//
// # Quick Start
//
//	client := backend.New(log.Default())
//	svg, err := client.Pipe(ctx, backend.Request{Engine: "dot", Format: "svg"},
//	    []byte("digraph { a -> b }"))
//
// Errors carry machine-readable codes from [errors]: a missing Graphviz
// installation is EXECUTABLE_NOT_FOUND, a failing layout is PROCESS_FAILED.
package pkg

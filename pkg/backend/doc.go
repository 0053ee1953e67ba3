// Package backend runs the Graphviz layout executable as a subprocess.
//
// # Overview
//
// Graphviz does all layout and rendering; this package only builds command
// lines, feeds DOT source on standard input and classifies failures. The
// layers, leaf first:
//
//   - Capability registry: [Engines], [Formats], [Renderers], [Formatters]
//   - Command builder: [BuildCommand] turns a [Request] into a [Command]
//   - Process runner: [Runner.Run] spawns one subprocess per call
//   - Rendering façade: [Client.Render], [Client.Pipe], [Client.PipeString],
//     [Client.PipeLines] and [Client.PipeLinesString]
//   - Version query: [Client.Version]
//   - Defaults holder: [Defaults]
//
// # Usage
//
//	client := backend.New(logger)
//	svg, err := client.Pipe(ctx, backend.Request{Engine: "dot", Format: "svg"},
//	    []byte("graph { hello -- world }"))
//
// # Errors
//
// Every operation reports the same taxonomy from
// [github.com/matzehuels/dotpipe/pkg/errors]: REQUIRED_ARGUMENT and
// UNKNOWN_VALUE before anything is spawned, EXECUTABLE_NOT_FOUND when the
// binary is missing, PROCESS_FAILED for a non-zero exit and VERSION_PARSE for
// an unreadable banner. Nothing is retried.
package backend

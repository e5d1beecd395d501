/*
Package domain contains the protocol-independent models shared by the catalog,
the registry and the dispatcher.

It is kept free of I/O and transport concerns so the same envelopes can travel over
the pipe transport, the HTTP transport or a direct library call.

# Key Entities

  - ToolRequest: A single call (tool name + raw arguments) received from a client.
  - ToolResponse: The envelope every call produces, successful or not.
  - Result: An explicit success/failure value threaded through handler steps.
  - Failure: A classified failure (validation, unknown tool, upstream, defect) that
    knows how to render itself as an error-flagged ToolResponse.
*/
package domain

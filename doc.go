/*
Package colombia exposes the public API of Colombia (https://api-colombia.com) as a
Model Context Protocol server.

Every upstream collection is described once in an embedded catalog and expanded into
tools such as get-department-by-id or get-city-paginated. Tool calls are validated,
forwarded to the upstream REST API and answered with the upstream JSON as text.

# Usage

	cfg, err := colombia.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	app, err := colombia.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	// stdio or streamable HTTP, depending on cfg.Transport
	if err := app.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}

The same tools can be invoked in-process:

	rsp := app.Call(ctx, "get-department-by-id", map[string]any{"id": 5})
	fmt.Println(rsp.Text())
*/
package colombia

// Package stackwire resolves a set of named resource factories into a wired
// graph of infrastructure constructs, building each distinct construct once.
//
// # Quick Start
//
// Declare factories and resolve them into a backend:
//
//	data := stackwire.NewFactory("data", func(ctx stackwire.GeneratorContext) (*Table, error) {
//	    return NewTable(ctx.Unit, "orders")
//	}, stackwire.WithToken("data-provider"))
//
//	b, err := stackwire.New(
//	    map[string]stackwire.Factory{"data": data, "auth": auth},
//	    stackwire.WithIdentifier(stack.Identifier{
//	        Type:      stack.DeploymentSandbox,
//	        Namespace: "shop",
//	        Name:      "alice",
//	    }),
//	)
//
// # Resolution
//
// A backend is resolved in three phases. Bootstrap prepares the root stack,
// writes attribution and the platform output, and links branch deployments.
// The registration pass then binds every factory that provides a token. The
// invocation pass calls each factory's Instance with a FactoryContext.
//
// Because every token is registered before any factory runs, a factory can
// look up another one regardless of order:
//
//	table, ok, err := stackwire.LookupInstance[*Table](ctx, "data-provider")
//
// # Constructs
//
// Factories produce constructs through the ConstructContainer. A Generator
// is the cache key: the same generator pointer always yields the same
// construct, and value-equal generators at different addresses do not share
// one. The GeneratorContext carries the unit for the generator's group, the
// backend identifier, and resolvers for secrets, environment entries and
// stable identifiers.
//
//	g := stackwire.NewGenerator("storage", newBucket)
//	bucket, err := stackwire.GetOrCompute[*Bucket](ctx.Container, g)
//
// The group stack.RootGroup places a construct in the root stack.
// Every other group gets its own nested stack, created on first use.
//
// # Stacks and Outputs
//
//	unit, err := b.CreateStack("custom")              // fails if the name is taken
//	err = b.AddOutput(outputs.Fragment{"api": "..."}) // deep-merged, versioned
//
// # Modules
//
// Group factories into modules to control invocation order:
//
//	var Data = stackwire.NewModule("data").Add("orders", orders)
//	var App = stackwire.NewModule("app").Include(Data).Add("api", api)
//
//	b, err := stackwire.NewFromModules([]*stackwire.Module{App}, opts...)
//
// # Debug Visualization
//
//	b.PrintGraph()      // ASCII to stdout
//	b.FprintGraphDOT(w) // Graphviz DOT
//	info := b.Graph()   // Structured GraphInfo
//
// # Observers
//
// Observe resolution for metrics integration, see package metrics:
//
//	stackwire.WithComputeObserver(func(gen, group string, hit bool, d time.Duration, err error) { ... })
//	stackwire.WithFactoryObserver(func(resource string, d time.Duration, err error) { ... })
package stackwire

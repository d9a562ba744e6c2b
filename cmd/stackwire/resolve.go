package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/danpasecinic/stackwire"
	"github.com/danpasecinic/stackwire/internal/catalog"
	"github.com/danpasecinic/stackwire/stack"
)

// identifier builds the backend identifier from the options. An empty region
// falls back to the AWS shared config and environment.
func (o *options) identifier(ctx context.Context) (stack.Identifier, error) {
	deploymentType, err := stack.ParseDeploymentType(o.deployType)
	if err != nil {
		return stack.Identifier{}, err
	}

	region := o.region
	if region == "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return stack.Identifier{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		region = cfg.Region
	}
	if region == "" {
		return stack.Identifier{}, fmt.Errorf("no region: set --region, STACKWIRE_REGION or AWS_REGION")
	}

	return stack.Identifier{
		Type:      deploymentType,
		Namespace: o.namespace,
		Name:      o.name,
		Region:    region,
	}, nil
}

type resolved struct {
	backend    *stackwire.Backend
	definition *catalog.Definition
}

func (o *options) resolve(ctx context.Context, logOutput io.Writer, extra ...stackwire.Option) (*resolved, error) {
	logger, err := buildLogger(o.logLevel, o.logFormat, logOutput)
	if err != nil {
		return nil, err
	}

	def, err := catalog.LoadFile(o.file)
	if err != nil {
		return nil, err
	}

	id, err := o.identifier(ctx)
	if err != nil {
		return nil, err
	}

	appOpts := id.ContextOptions()
	if o.account != "" {
		appOpts = append(appOpts, stack.WithAccount(o.account))
	}

	opts := []stackwire.Option{
		stackwire.WithIdentifier(id),
		stackwire.WithApp(stack.NewApp("app", appOpts...)),
		stackwire.WithLogger(logger),
		stackwire.WithLibraryVersion(version),
	}
	opts = append(opts, extra...)

	b, err := stackwire.NewFromModules([]*stackwire.Module{def.Module("catalog")}, opts...)
	if err != nil {
		return nil, err
	}
	if err := def.Apply(b); err != nil {
		return nil, err
	}

	logger.Info(
		"backend resolved",
		slog.String("identifier", id.String()),
		slog.Int("resources", len(b.Names())),
		slog.Int("stacks", len(b.Stacks())),
	)
	return &resolved{backend: b, definition: def}, nil
}

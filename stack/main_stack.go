package stack

import "fmt"

// MainStackCreator creates the root unit of a backend under an app unit and
// tags it for the deployment it belongs to.
type MainStackCreator struct {
	app       *Unit
	id        Identifier
	newUnit   UnitFactory
	mainStack *Unit
}

func NewMainStackCreator(app *Unit, id Identifier, newUnit UnitFactory) *MainStackCreator {
	if newUnit == nil {
		newUnit = NestedUnit
	}
	return &MainStackCreator{app: app, id: id, newUnit: newUnit}
}

// NewDefaultApp builds an app unit carrying id as inherited context.
func NewDefaultApp(id Identifier) *Unit {
	return NewApp("app", id.ContextOptions()...)
}

func (c *MainStackCreator) GetOrCreateMainStack() (*Unit, error) {
	if c.mainStack == nil {
		if err := c.id.Validate(); err != nil {
			return nil, fmt.Errorf("create main stack: %w", err)
		}
		u, err := c.newUnit(c.app, StackName(c.id), KindRoot)
		if err != nil {
			return nil, fmt.Errorf("create main stack: %w", err)
		}
		c.mainStack = u
	}

	u := c.mainStack
	u.AddTag("created-by", "stackwire")
	switch c.id.Type {
	case DeploymentBranch:
		u.AddTag("stackwire:app-id", c.id.Namespace)
		u.AddTag("stackwire:branch-name", c.id.Name)
		u.AddTag("stackwire:deployment-type", string(DeploymentBranch))
	case DeploymentSandbox:
		u.AddTag("stackwire:deployment-type", string(DeploymentSandbox))
	}
	return u, nil
}

package stack

import "fmt"

const (
	BranchLinkerID   = "BranchLinker"
	BranchLinkerType = "Custom::BranchLinker"
)

// LinkBranch adds the node that associates the deployed backend with its
// hosting branch. It is only meaningful for branch deployments.
func LinkBranch(root *Unit, id Identifier) (*Node, error) {
	if id.Type != DeploymentBranch {
		return nil, fmt.Errorf("link branch for %s: %w", id, ErrInvalidDeploymentType)
	}
	return root.AddNode(BranchLinkerID, BranchLinkerType, map[string]any{
		"appId":      id.Namespace,
		"branchName": id.Name,
		"region":     id.Region,
	})
}

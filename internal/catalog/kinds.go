package catalog

import (
	"maps"
	"slices"
)

type kind struct {
	nodeType string
	group    string
}

var kinds = map[string]kind{
	"bucket":   {nodeType: "AWS::S3::Bucket", group: "storage"},
	"function": {nodeType: "AWS::Lambda::Function", group: "function"},
	"queue":    {nodeType: "AWS::SQS::Queue", group: "messaging"},
	"table":    {nodeType: "AWS::DynamoDB::Table", group: "data"},
	"topic":    {nodeType: "AWS::SNS::Topic", group: "messaging"},
	"userPool": {nodeType: "AWS::Cognito::UserPool", group: "auth"},
	"api":      {nodeType: "AWS::AppSync::GraphQLApi", group: "data"},
}

// Kinds lists the supported resource kinds.
func Kinds() []string {
	return slices.Sorted(maps.Keys(kinds))
}

// NodeType is the construct node type created for kind.
func NodeType(kind string) (string, bool) {
	k, ok := kinds[kind]
	return k.nodeType, ok
}

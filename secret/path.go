package secret

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"github.com/danpasecinic/stackwire/stack"
)

const pathPrefix = "/stackwire"

// ParameterPrefix is the parameter store prefix owned by one deployment.
func ParameterPrefix(id stack.Identifier) string {
	return pathPrefix + "/" + id.Namespace + "/" + id.Name
}

// SharedParameterPrefix is the prefix shared by every deployment in a
// namespace.
func SharedParameterPrefix(namespace string) string {
	return pathPrefix + "/shared/" + namespace
}

func ParameterPath(id stack.Identifier, name string) string {
	return ParameterPrefix(id) + "/" + name
}

func SharedParameterPath(namespace, name string) string {
	return SharedParameterPrefix(namespace) + "/" + name
}

// ParameterARN builds the ARN of an SSM parameter. path must be absolute.
func ParameterARN(partition, region, account, path string) string {
	if partition == "" {
		partition = "aws"
	}
	return arn.ARN{
		Partition: partition,
		Service:   "ssm",
		Region:    region,
		AccountID: account,
		Resource:  "parameter/" + strings.TrimPrefix(path, "/"),
	}.String()
}

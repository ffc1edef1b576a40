package infrastructure

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tidwall/gjson"
)

// TableSchema mirrors the CreateTable JSON stored in table_schema.json
type TableSchema struct {
	TableName              string                 `json:"TableName"`
	AttributeDefinitions   []AttributeDefinition  `json:"AttributeDefinitions"`
	KeySchema              []KeySchemaElement     `json:"KeySchema"`
	ProvisionedThroughput  Throughput             `json:"ProvisionedThroughput"`
	GlobalSecondaryIndexes []GlobalSecondaryIndex `json:"GlobalSecondaryIndexes,omitempty"`
}

type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"`
}

type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

type Throughput struct {
	ReadCapacityUnits  int64 `json:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `json:"WriteCapacityUnits"`
}

type GlobalSecondaryIndex struct {
	IndexName             string             `json:"IndexName"`
	KeySchema             []KeySchemaElement `json:"KeySchema"`
	Projection            Projection         `json:"Projection"`
	ProvisionedThroughput Throughput         `json:"ProvisionedThroughput"`
}

type Projection struct {
	ProjectionType string `json:"ProjectionType"`
}

//go:embed table_schema.json
var tablesSchema []byte

// GetTables resolves the CreateTable input for a prefixed table name
func GetTables(tableName string) (*dynamodb.CreateTableInput, error) {
	schemaKey := extractBaseTableName(tableName)

	tableJson := gjson.Get(string(tablesSchema), schemaKey)
	if !tableJson.Exists() {
		return nil, fmt.Errorf("table schema not found for key: %s", schemaKey)
	}

	var schema TableSchema
	if err := json.Unmarshal([]byte(tableJson.Raw), &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema JSON: %w", err)
	}

	// Keep the environment prefix on the actual table
	schema.TableName = tableName

	return schema.ToDynamoInput(), nil
}

// extractBaseTableName strips the environment prefix from a table name. The
// first underscore-separated segment is the prefix; the base name may itself
// contain underscores ("dev_service_requests" -> "service_requests").
func extractBaseTableName(tableName string) string {
	parts := strings.SplitN(tableName, "_", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return tableName
}

// ToDynamoInput converts the schema to a DynamoDB CreateTable input
func (ts *TableSchema) ToDynamoInput() *dynamodb.CreateTableInput {
	var attrDefs []types.AttributeDefinition
	for _, a := range ts.AttributeDefinitions {
		attrDefs = append(attrDefs, types.AttributeDefinition{
			AttributeName: aws.String(a.AttributeName),
			AttributeType: types.ScalarAttributeType(a.AttributeType),
		})
	}

	var keySchema []types.KeySchemaElement
	for _, k := range ts.KeySchema {
		keySchema = append(keySchema, types.KeySchemaElement{
			AttributeName: aws.String(k.AttributeName),
			KeyType:       types.KeyType(k.KeyType),
		})
	}

	var gsis []types.GlobalSecondaryIndex
	for _, g := range ts.GlobalSecondaryIndexes {
		var gsiKeySchema []types.KeySchemaElement
		for _, k := range g.KeySchema {
			gsiKeySchema = append(gsiKeySchema, types.KeySchemaElement{
				AttributeName: aws.String(k.AttributeName),
				KeyType:       types.KeyType(k.KeyType),
			})
		}
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(g.IndexName),
			KeySchema: gsiKeySchema,
			Projection: &types.Projection{
				ProjectionType: types.ProjectionType(g.Projection.ProjectionType),
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(g.ProvisionedThroughput.ReadCapacityUnits),
				WriteCapacityUnits: aws.Int64(g.ProvisionedThroughput.WriteCapacityUnits),
			},
		})
	}

	return &dynamodb.CreateTableInput{
		TableName:            aws.String(ts.TableName),
		AttributeDefinitions: attrDefs,
		KeySchema:            keySchema,
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(ts.ProvisionedThroughput.ReadCapacityUnits),
			WriteCapacityUnits: aws.Int64(ts.ProvisionedThroughput.WriteCapacityUnits),
		},
		GlobalSecondaryIndexes: gsis,
	}
}

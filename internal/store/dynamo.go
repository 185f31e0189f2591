package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
)

const dynamoGatewayName = "dynamodb"

// DynamoAPI is the slice of the DynamoDB client the gateway uses.
type DynamoAPI interface {
	dynamodb.QueryAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoConfig names the table layout. The base table is keyed by userId/matchId; the
// group index is keyed by feedGroup ("<userId>#<group>") and matchId.
type DynamoConfig struct {
	Table      string
	GroupIndex string
	FullFetch  int
}

// feedRecord is the stored shape of a feed item. Status is kept as its integer code.
type feedRecord struct {
	UserID      int64             `dynamodbav:"userId"`
	MatchID     int64             `dynamodbav:"matchId"`
	FeedGroup   string            `dynamodbav:"feedGroup"`
	CandidateID int64             `dynamodbav:"candidateId"`
	Status      int               `dynamodbav:"status"`
	DisplayName string            `dynamodbav:"displayName,omitempty"`
	Hidden      bool              `dynamodbav:"hidden"`
	Photos      []string          `dynamodbav:"photos,omitempty"`
	DeliveredAt time.Time         `dynamodbav:"deliveredAt"`
	LastCommAt  time.Time         `dynamodbav:"lastCommAt"`
	Profile     map[string]string `dynamodbav:"profile,omitempty"`
}

// FeedGroupKey is the group index partition key for a user's status group.
func FeedGroupKey(userID int64, group matches.StatusGroup) string {
	return fmt.Sprintf("%d#%s", userID, group)
}

func recordFromItem(item matches.FeedItem) feedRecord {
	return feedRecord{
		UserID:      item.UserID,
		MatchID:     item.MatchID,
		FeedGroup:   FeedGroupKey(item.UserID, item.Group()),
		CandidateID: item.CandidateID,
		Status:      item.Status.Code(),
		DisplayName: item.DisplayName,
		Hidden:      item.Hidden,
		Photos:      item.Photos,
		DeliveredAt: item.DeliveredAt,
		LastCommAt:  item.LastCommAt,
		Profile:     item.Profile,
	}
}

func (r feedRecord) toItem() (matches.FeedItem, error) {
	status, ok := matches.StatusFromCode(r.Status)
	if !ok {
		return matches.FeedItem{}, fmt.Errorf("match %d: unknown status code %d", r.MatchID, r.Status)
	}
	return matches.FeedItem{
		MatchID:     r.MatchID,
		UserID:      r.UserID,
		CandidateID: r.CandidateID,
		Status:      status,
		DisplayName: r.DisplayName,
		Hidden:      r.Hidden,
		Photos:      r.Photos,
		DeliveredAt: r.DeliveredAt,
		LastCommAt:  r.LastCommAt,
		Profile:     r.Profile,
	}, nil
}

// DynamoGateway reads feed items from DynamoDB, one paginated query per descriptor.
type DynamoGateway struct {
	client DynamoAPI
	cfg    DynamoConfig
	logger *slog.Logger
}

// NewDynamoClient loads the default AWS configuration for region. A non-empty endpoint
// points the client at a local DynamoDB.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func NewDynamoGateway(client DynamoAPI, cfg DynamoConfig, logger *slog.Logger) *DynamoGateway {
	if cfg.FullFetch <= 0 {
		cfg.FullFetch = DefaultFullFetch
	}
	return &DynamoGateway{client: client, cfg: cfg, logger: logger}
}

// Query reads matching items page by page until the descriptor's window is filled.
// Grouped descriptors hit the group index; the legacy descriptor reads the base table.
func (g *DynamoGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	if q.Empty() {
		return nil, ErrEmptyQuery
	}
	skip, keep := window(q, g.cfg.FullFetch)
	input := g.queryInput(q, skip+keep)

	set := matches.NewFeedSet()
	pages := dynamodb.NewQueryPaginator(g.client, input)
	for pages.HasMorePages() && set.Len() < keep {
		out, err := pages.NextPage(ctx)
		if err != nil {
			return nil, g.wrapErr(q, err)
		}
		for _, raw := range out.Items {
			if skip > 0 {
				skip--
				continue
			}
			var rec feedRecord
			if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
				return nil, fmt.Errorf("decode feed item: %w", err)
			}
			item, err := rec.toItem()
			if err != nil {
				return nil, err
			}
			set.Add(item)
			if set.Len() >= keep {
				break
			}
		}
	}

	logging.Debug(logging.FromContext(ctx, g.logger), "dynamo feed query",
		logging.FieldUserID, q.UserID,
		logging.FieldGroup, groupLabel(q),
		logging.FieldCount, set.Len(),
	)
	return set, nil
}

func (g *DynamoGateway) queryInput(q matches.QueryDescriptor, want int) *dynamodb.QueryInput {
	names := map[string]string{"#status": "status"}
	values := make(map[string]types.AttributeValue, len(q.Statuses)+1)

	placeholders := make([]string, 0, len(q.Statuses))
	for i, status := range q.Statuses {
		ph := ":s" + strconv.Itoa(i)
		placeholders = append(placeholders, ph)
		values[ph] = &types.AttributeValueMemberN{Value: strconv.Itoa(status.Code())}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(g.cfg.Table),
		FilterExpression:          aws.String(fmt.Sprintf("#status IN (%s)", strings.Join(placeholders, ", "))),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(int32(min(want, g.cfg.FullFetch))),
	}
	if q.Group == "" {
		input.KeyConditionExpression = aws.String("userId = :pk")
		values[":pk"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(q.UserID, 10)}
	} else {
		input.IndexName = aws.String(g.cfg.GroupIndex)
		input.KeyConditionExpression = aws.String("feedGroup = :pk")
		values[":pk"] = &types.AttributeValueMemberS{Value: FeedGroupKey(q.UserID, q.Group)}
	}
	return input
}

// Get reads one item by primary key.
func (g *DynamoGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	out, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(g.cfg.Table),
		Key: map[string]types.AttributeValue{
			"userId":  &types.AttributeValueMemberN{Value: strconv.FormatInt(userID, 10)},
			"matchId": &types.AttributeValueMemberN{Value: strconv.FormatInt(matchID, 10)},
		},
	})
	if err != nil {
		return matches.FeedItem{}, false, fmt.Errorf("get match %d: %w", matchID, err)
	}
	if len(out.Item) == 0 {
		return matches.FeedItem{}, false, nil
	}
	var rec feedRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return matches.FeedItem{}, false, fmt.Errorf("decode match %d: %w", matchID, err)
	}
	item, err := rec.toItem()
	if err != nil {
		return matches.FeedItem{}, false, err
	}
	return item, true, nil
}

func (g *DynamoGateway) wrapErr(q matches.QueryDescriptor, err error) error {
	var throughput *types.ProvisionedThroughputExceededException
	var requestLimit *types.RequestLimitExceeded
	if errors.As(err, &throughput) || errors.As(err, &requestLimit) {
		return &ThrottledError{Gateway: dynamoGatewayName, Group: groupLabel(q), Err: err}
	}
	return fmt.Errorf("query %s: %w", q.Key(), err)
}

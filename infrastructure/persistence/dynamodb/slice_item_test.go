package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

func int64Ptr(v int64) *int64 { return &v }

func eventSlice() *entities.MonthSlice {
	cfg := config.DefaultDomainConfig()
	s := entities.NewMonthSlice(vo.DomainEvent, "p#shop#checkout", "#202402", 1700)
	s.Month = vo.LatestMonth
	s.Prefix = "EVENT#p#shop#v3"
	s.ProjectID = "p"
	s.AppID = "shop"
	s.Name = "checkout"
	s.SetDay(3, &entities.DaySlot{
		HasData:  true,
		Count:    int64Ptr(7),
		Platform: vo.NewBoundedSet(cfg.MaxIdentifierSet, "ANDROID", "IOS"),
	})
	s.SetDay(12, &entities.DaySlot{
		HasData:    true,
		Count:      int64Ptr(2),
		SDKVersion: vo.NewBoundedSet(cfg.MaxIdentifierSet, "1.2.0"),
	})
	s.Summary = entities.Summary{
		HasData:     true,
		Platform:    vo.NewBoundedSet(cfg.MaxIdentifierSet, "ANDROID", "IOS"),
		SDKVersion:  vo.NewBoundedSet(cfg.MaxIdentifierSet, "1.2.0"),
		LatestCount: int64Ptr(7),
		AssociatedParameters: vo.NewBoundedSet(cfg.MaxAssociatedParams,
			entities.ParameterRef{Name: "price", Category: "event", ValueType: "double"}),
	}
	return s
}

func TestItemCodec_FlattensDays(t *testing.T) {
	codec := itemCodec{cfg: config.DefaultDomainConfig()}

	item, err := codec.marshal(eventSlice())
	require.NoError(t, err)

	assert.Equal(t, &types.AttributeValueMemberS{Value: "p#shop#checkout"}, item["id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "latest"}, item["month"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "#202402"}, item["originMonth"])
	assert.Contains(t, item, "day3")
	assert.Contains(t, item, "day12")
	assert.Contains(t, item, "summary")
	assert.NotContains(t, item, "days")
	assert.NotContains(t, item, "category", "empty strings are omitted")

	day3, ok := item["day3"].(*types.AttributeValueMemberM)
	require.True(t, ok)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "7"}, day3.Value["count"])
	assert.NotContains(t, day3.Value, "sdkName")
}

func TestItemCodec_Decode(t *testing.T) {
	codec := itemCodec{cfg: config.DefaultDomainConfig()}
	original := eventSlice()

	item, err := codec.marshal(original)
	require.NoError(t, err)
	item["unrelated"] = &types.AttributeValueMemberS{Value: "ignored"}

	decoded, err := codec.unmarshal(item)
	require.NoError(t, err)

	assert.Equal(t, vo.DomainEvent, decoded.Domain)
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Month, decoded.Month)
	assert.Equal(t, original.OriginMonth, decoded.OriginMonth)
	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, int64(1700), decoded.CreateTimestamp)
	assert.Equal(t, []int{3, 12}, decoded.DayNumbers())

	day3, _ := decoded.Day(3)
	assert.Equal(t, int64(7), *day3.Count)
	assert.Equal(t, []string{"ANDROID", "IOS"}, day3.Platform.Values())
	assert.Nil(t, day3.SDKVersion)
	assert.Equal(t, config.DefaultMaxIdentifierSet, day3.Platform.Limit())

	assert.Equal(t, []string{"ANDROID", "IOS"}, decoded.Summary.Platform.Values())
	assert.Equal(t, int64(7), *decoded.Summary.LatestCount)
	assert.Equal(t, []entities.ParameterRef{{Name: "price", Category: "event", ValueType: "double"}},
		decoded.Summary.AssociatedParameters.Values())
}

func TestItemCodec_DecodeValueEnumCaps(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxDayValues = 1
	codec := itemCodec{cfg: cfg}

	s := entities.NewMonthSlice(vo.DomainUserAttribute, "p#shop#user#city#string", "#202401", 1)
	s.Prefix = "USER_ATTRIBUTE#p#shop#v3"
	s.SetDay(1, &entities.DaySlot{
		HasData:   true,
		ValueEnum: vo.NewValueEnum(0, vo.ValueCount{Value: "paris", Count: 2}, vo.ValueCount{Value: "rome", Count: 1}),
	})

	item, err := codec.marshal(s)
	require.NoError(t, err)
	decoded, err := codec.unmarshal(item)
	require.NoError(t, err)

	day, _ := decoded.Day(1)
	assert.Equal(t, []vo.ValueCount{{Value: "paris", Count: 2}}, day.ValueEnum.List())
}

func TestItemCodec_UnknownPrefix(t *testing.T) {
	codec := itemCodec{cfg: config.DefaultDomainConfig()}
	_, err := codec.unmarshal(map[string]types.AttributeValue{
		"id":     &types.AttributeValueMemberS{Value: "x"},
		"month":  &types.AttributeValueMemberS{Value: "latest"},
		"prefix": &types.AttributeValueMemberS{Value: "NODE#x"},
	})
	assert.ErrorContains(t, err, "unknown prefix")
}

func TestDayNumber(t *testing.T) {
	for attr, want := range map[string]int{"day1": 1, "day31": 31} {
		n, ok := dayNumber(attr)
		assert.True(t, ok, attr)
		assert.Equal(t, want, n)
	}
	for _, attr := range []string{"day", "day0", "day32", "dayX", "days", "summary"} {
		_, ok := dayNumber(attr)
		assert.False(t, ok, attr)
	}
}

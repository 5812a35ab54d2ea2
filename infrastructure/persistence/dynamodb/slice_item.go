package dynamodb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

const (
	attrID          = "id"
	attrMonth       = "month"
	attrOriginMonth = "originMonth"
	attrSummary     = "summary"
	dayAttrPrefix   = "day"
)

// sliceItem is the fixed part of a catalog item. Day slots are stored as
// separate "day<N>" map attributes next to it.
type sliceItem struct {
	ID              string `dynamodbav:"id"`
	Month           string `dynamodbav:"month"`
	OriginMonth     string `dynamodbav:"originMonth"`
	Prefix          string `dynamodbav:"prefix"`
	ProjectID       string `dynamodbav:"projectId"`
	AppID           string `dynamodbav:"appId"`
	Name            string `dynamodbav:"name,omitempty"`
	Category        string `dynamodbav:"category,omitempty"`
	ValueType       string `dynamodbav:"valueType,omitempty"`
	CreateTimestamp int64  `dynamodbav:"createTimestamp"`
	UpdateTimestamp int64  `dynamodbav:"updateTimestamp"`
}

type dayItem struct {
	HasData    bool            `dynamodbav:"hasData"`
	Count      *int64          `dynamodbav:"count,omitempty"`
	Platform   []string        `dynamodbav:"platform,omitempty"`
	SDKVersion []string        `dynamodbav:"sdkVersion,omitempty"`
	SDKName    []string        `dynamodbav:"sdkName,omitempty"`
	ValueEnum  []vo.ValueCount `dynamodbav:"valueEnum,omitempty"`
}

type summaryItem struct {
	HasData              bool                    `dynamodbav:"hasData"`
	Platform             []string                `dynamodbav:"platform,omitempty"`
	SDKVersion           []string                `dynamodbav:"sdkVersion,omitempty"`
	SDKName              []string                `dynamodbav:"sdkName,omitempty"`
	ValueEnum            []vo.ValueCount         `dynamodbav:"valueEnum,omitempty"`
	AssociatedEvents     []string                `dynamodbav:"associatedEvents,omitempty"`
	AssociatedParameters []entities.ParameterRef `dynamodbav:"associatedParameters,omitempty"`
	LatestCount          *int64                  `dynamodbav:"latestCount,omitempty"`
}

// itemCodec converts between slices and items. Decoded collections get
// the configured caps back.
type itemCodec struct {
	cfg *config.DomainConfig
}

func dayAttr(n int) string {
	return dayAttrPrefix + strconv.Itoa(n)
}

// dayNumber parses "day<N>"; any other attribute name is rejected.
func dayNumber(attr string) (int, bool) {
	rest, ok := strings.CutPrefix(attr, dayAttrPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

func (c itemCodec) marshal(slice *entities.MonthSlice) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(sliceItem{
		ID:              slice.ID,
		Month:           slice.Month,
		OriginMonth:     slice.OriginMonth,
		Prefix:          slice.Prefix,
		ProjectID:       slice.ProjectID,
		AppID:           slice.AppID,
		Name:            slice.Name,
		Category:        slice.Category,
		ValueType:       slice.ValueType,
		CreateTimestamp: slice.CreateTimestamp,
		UpdateTimestamp: slice.UpdateTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slice %s/%s: %w", slice.ID, slice.Month, err)
	}

	for _, n := range slice.DayNumbers() {
		d := slice.Days[n]
		av, err := attributevalue.Marshal(dayItem{
			HasData:    d.HasData,
			Count:      d.Count,
			Platform:   d.Platform.Values(),
			SDKVersion: d.SDKVersion.Values(),
			SDKName:    d.SDKName.Values(),
			ValueEnum:  d.ValueEnum.List(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal day %d of %s/%s: %w", n, slice.ID, slice.Month, err)
		}
		item[dayAttr(n)] = av
	}

	s := slice.Summary
	summary, err := attributevalue.Marshal(summaryItem{
		HasData:              s.HasData,
		Platform:             s.Platform.Values(),
		SDKVersion:           s.SDKVersion.Values(),
		SDKName:              s.SDKName.Values(),
		ValueEnum:            s.ValueEnum.List(),
		AssociatedEvents:     s.AssociatedEvents.Values(),
		AssociatedParameters: s.AssociatedParameters.Values(),
		LatestCount:          s.LatestCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary of %s/%s: %w", slice.ID, slice.Month, err)
	}
	item[attrSummary] = summary

	return item, nil
}

func (c itemCodec) unmarshal(item map[string]types.AttributeValue) (*entities.MonthSlice, error) {
	var base sliceItem
	if err := attributevalue.UnmarshalMap(item, &base); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog item: %w", err)
	}
	domain, ok := vo.DomainOfPrefix(base.Prefix)
	if !ok {
		return nil, fmt.Errorf("catalog item %s/%s has unknown prefix %q", base.ID, base.Month, base.Prefix)
	}

	slice := &entities.MonthSlice{
		Domain:          domain,
		ID:              base.ID,
		Month:           base.Month,
		OriginMonth:     base.OriginMonth,
		Prefix:          base.Prefix,
		ProjectID:       base.ProjectID,
		AppID:           base.AppID,
		Name:            base.Name,
		Category:        base.Category,
		ValueType:       base.ValueType,
		Days:            make(map[int]*entities.DaySlot),
		CreateTimestamp: base.CreateTimestamp,
		UpdateTimestamp: base.UpdateTimestamp,
	}
	if slice.OriginMonth == "" {
		slice.OriginMonth = slice.Month
	}

	for attr, av := range item {
		n, ok := dayNumber(attr)
		if !ok {
			continue
		}
		var d dayItem
		if err := attributevalue.Unmarshal(av, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s of %s/%s: %w", attr, base.ID, base.Month, err)
		}
		slice.SetDay(n, &entities.DaySlot{
			HasData:    d.HasData,
			Count:      d.Count,
			Platform:   c.set(d.Platform),
			SDKVersion: c.set(d.SDKVersion),
			SDKName:    c.set(d.SDKName),
			ValueEnum:  c.enum(c.cfg.MaxDayValues, d.ValueEnum),
		})
	}

	if av, ok := item[attrSummary]; ok {
		var s summaryItem
		if err := attributevalue.Unmarshal(av, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary of %s/%s: %w", base.ID, base.Month, err)
		}
		slice.Summary = entities.Summary{
			HasData:          s.HasData,
			Platform:         c.set(s.Platform),
			SDKVersion:       c.set(s.SDKVersion),
			SDKName:          c.set(s.SDKName),
			ValueEnum:        c.enum(c.cfg.MaxSummaryValues, s.ValueEnum),
			AssociatedEvents: c.set(s.AssociatedEvents),
			LatestCount:      s.LatestCount,
		}
		if s.AssociatedParameters != nil {
			slice.Summary.AssociatedParameters = vo.NewBoundedSet(c.cfg.MaxAssociatedParams, s.AssociatedParameters...)
		}
	}

	return slice, nil
}

func (c itemCodec) set(values []string) *vo.BoundedSet[string] {
	if values == nil {
		return nil
	}
	return vo.NewBoundedSet(c.cfg.MaxIdentifierSet, values...)
}

func (c itemCodec) enum(limit int, items []vo.ValueCount) *vo.ValueEnum {
	if items == nil {
		return nil
	}
	return vo.NewValueEnum(limit, items...)
}

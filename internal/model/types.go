package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// StringArray 用于 JSON 数组字段
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *StringArray) Scan(value interface{}) error {
	data, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*s = StringArray{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// scanBytes 兼容不同驱动返回的 []byte / string
func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}

// NewID 生成文档 ID（ULID，按时间有序）
func NewID() string {
	return strings.ToLower(ulid.Make().String())
}

// ensureID 在创建前补齐 ID
func ensureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Application{},
		&AppStatusHistory{},
		&PricingPlan{},
		&DiscountCode{},
		&MaintenanceEvent{},
		&User{},
		&ReferralEntry{},
		&UserPricing{},
		&MediaItem{},
		&Notification{},
	}
}

package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ErrExtraJSON 表示 JSON 主體後仍有多餘資料
var ErrExtraJSON = errors.New("unexpected extra JSON data")

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExtraJSON, err)
		}
		return ErrExtraJSON
	}
	return nil
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToIndentedJSON 以兩格縮排輸出 JSON，供離線檔案與自我測試報告使用
func ToIndentedJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

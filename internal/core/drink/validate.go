package drink

import (
	"errors"
	"fmt"
)

// ConsistencyIssue 配方資料不一致的項目
type ConsistencyIssue struct {
	Recipe    string `json:"recipe"`
	Component string `json:"component"`
	Problem   string `json:"problem"`
}

func (i ConsistencyIssue) Error() string {
	return fmt.Sprintf("%s: %s: %s", i.Recipe, i.Component, i.Problem)
}

// CheckConsistency 啟動時檢查資料表；執行期仍忽略未知成分
func CheckConsistency(catalog *Catalog, library *Library) []ConsistencyIssue {
	var issues []ConsistencyIssue

	for _, b := range catalog.Bases() {
		if _, clash := catalog.Mixer(b.Name); clash {
			issues = append(issues, ConsistencyIssue{Component: b.Name, Problem: "name is both a base ingredient and a mixer"})
		}
		if b.ServingOz <= 0 {
			issues = append(issues, ConsistencyIssue{Component: b.Name, Problem: "serving volume must be positive"})
		}
		if b.ABVPct < 0 || b.ABVPct > 100 {
			issues = append(issues, ConsistencyIssue{Component: b.Name, Problem: "abv out of range"})
		}
	}

	for _, r := range library.Stored() {
		for _, p := range r.Components {
			if catalog.Resolve(p.Name) == nil {
				issues = append(issues, ConsistencyIssue{Recipe: r.Name, Component: p.Name, Problem: "unknown component"})
			}
			if p.Quantity < 0 {
				issues = append(issues, ConsistencyIssue{Recipe: r.Name, Component: p.Name, Problem: "negative quantity"})
			}
		}
	}
	return issues
}

// JoinIssues 合併成單一錯誤，無問題時回傳 nil
func JoinIssues(issues []ConsistencyIssue) error {
	if len(issues) == 0 {
		return nil
	}
	errs := make([]error, 0, len(issues))
	for _, i := range issues {
		errs = append(errs, i)
	}
	return errors.Join(errs...)
}

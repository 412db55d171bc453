// Package model 定义核心数据模型
//
// carbonapp.go 包含 Carbon Application（CApp）相关的数据模型定义：
//   - Package：已安装的 CApp（由部署注册表维护）
//   - Dependency / Artifact：CApp 声明的依赖及其产物
//   - PackageSummary / PackageView / ArtifactView：管理 API 的 JSON 投影
package model

import "strings"

// ============================================================================
// Package - 已安装的 Carbon Application
// ============================================================================

// Package 表示部署引擎中已安装的 Carbon Application
//
// 字段说明：
//   - Name：应用名称（注册表内唯一）
//   - Version：应用版本
//   - Dependencies：应用产物声明的依赖列表，顺序由注册表决定
type Package struct {
	Name         string       `json:"name" yaml:"name"`
	Version      string       `json:"version" yaml:"version"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Dependency 应用产物的一条依赖，指向实际部署的 Artifact
type Dependency struct {
	Artifact *Artifact `json:"artifact,omitempty" yaml:"artifact,omitempty"`
}

// Artifact CApp 内的子组件（API、序列、端点等）
//
// Type 为两段式类别，如 "synapse/api"；Name 为空表示该产物部署失败。
type Artifact struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

// ArtifactKind 返回类别字符串中第一个 "/" 之后的部分
//
// "synapse/api" → "api"，"a/b/c" → "b"，不含 "/" 时返回空串。
func ArtifactKind(artifactType string) string {
	_, rest, ok := strings.Cut(artifactType, "/")
	if !ok {
		return ""
	}
	kind, _, _ := strings.Cut(rest, "/")
	return kind
}

// ============================================================================
// JSON 投影
// ============================================================================

// PackageSummary 列表接口中的应用摘要
type PackageSummary struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PackageList 列表接口响应体
type PackageList struct {
	Count int              `json:"count"`
	List  []PackageSummary `json:"list"`
}

// ArtifactView 应用详情中的产物条目
type ArtifactView struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PackageView 单个应用的完整投影
type PackageView struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	Artifacts []ArtifactView `json:"artifacts"`
}

// Summary 返回应用摘要
func (p *Package) Summary() PackageSummary {
	return PackageSummary{Name: p.Name, Version: p.Version}
}

// NewPackageList 按注册表顺序构建列表响应
func NewPackageList(pkgs []*Package) PackageList {
	list := PackageList{Count: len(pkgs), List: make([]PackageSummary, 0, len(pkgs))}
	for _, p := range pkgs {
		list.List = append(list.List, p.Summary())
	}
	return list
}

// NewPackageView 将应用投影为详情视图
//
// 按依赖顺序遍历，跳过缺失或未命名（部署失败）的产物；Artifacts 始终非 nil。
func NewPackageView(p *Package) *PackageView {
	if p == nil {
		return nil
	}
	view := &PackageView{
		Name:      p.Name,
		Version:   p.Version,
		Artifacts: make([]ArtifactView, 0, len(p.Dependencies)),
	}
	for _, dep := range p.Dependencies {
		a := dep.Artifact
		if a == nil || a.Name == "" {
			continue
		}
		view.Artifacts = append(view.Artifacts, ArtifactView{
			Name: a.Name,
			Type: ArtifactKind(a.Type),
		})
	}
	return view
}

package model

import (
	"context"
	"fmt"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

// ServiceModel 把 core.MLService（KServe 等推理服务）适配为 Scorer。
// 推理服务只接受稠密数值输入，分类列按 schema 词表做标签编码。
type ServiceModel struct {
	name    string
	svc     core.MLService
	columns []string
	encoder *feature.LabelEncoder
	version string
}

func NewServiceModel(name string, svc core.MLService, schema *feature.Schema) *ServiceModel {
	return &ServiceModel{
		name:    name,
		svc:     svc,
		columns: append([]string(nil), schema.FeatureColumns...),
		encoder: feature.NewLabelEncoderFromSchema(schema),
		version: schema.ModelVersion,
	}
}

func (m *ServiceModel) Name() string { return m.name }

func (m *ServiceModel) FeatureColumns() []string {
	return append([]string(nil), m.columns...)
}

func (m *ServiceModel) Predict(ctx context.Context, x *feature.Matrix) ([]float64, error) {
	if x.Len() == 0 {
		return []float64{}, nil
	}
	instances, err := x.Dense(m.encoder)
	if err != nil {
		return nil, fmt.Errorf("encode matrix: %w", err)
	}
	resp, err := m.svc.Predict(ctx, &core.MLPredictRequest{
		Instances:    instances,
		ModelVersion: m.version,
	})
	if err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}

// Health 透传推理服务健康检查
func (m *ServiceModel) Health(ctx context.Context) error {
	return m.svc.Health(ctx)
}

// Close 关闭推理服务客户端
func (m *ServiceModel) Close() error {
	return m.svc.Close()
}

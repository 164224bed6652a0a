// Package factory builds pluggable modules, such as metrics sinks, from the
// `{type, conf}` entries of the configuration file. The conf map is decoded on
// json tags.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//		var c InfluxConfig
//		if err := factory.Decode(conf, &c); err != nil {
//			return nil, err
//		}
//		return NewInfluxSink(c), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://localhost:8086"}})
package factory

package fragment

import "html/template"

// The bootstrap script picks the variant matching prefers-color-scheme and
// re-renders after a trailing debounce whenever the container is resized or
// the scheme changes.
var chartTemplate = template.Must(template.New("chart").Parse(`<figure class="chartembed" id="{{.ID}}-figure">
<div id="{{.ID}}" class="chartembed-container" style="width: {{.Width}}; height: {{.Height}};"></div>
{{- if .Caption}}
<figcaption id="{{.ID}}-caption">{{.Caption}}</figcaption>
{{- end}}
<script type="application/json" id="{{.ID}}-payload">{{.Payload}}</script>
<script>
(function () {
  var id = {{.ID}};
  var el = document.getElementById(id);
  var caption = document.getElementById(id + "-caption");
  var payload = JSON.parse(document.getElementById(id + "-payload").textContent);
  var media = window.matchMedia("(prefers-color-scheme: dark)");
  var chart = null;
  var current = null;
  var timer = null;

  function render() {
    var variant = media.matches ? payload.dark : payload.light;
    if (chart === null || variant !== current) {
      if (chart !== null) {
        chart.dispose();
      }
      chart = echarts.init(el, null, variant.renderOptions || {});
      current = variant;
    }
    chart.setOption(variant.option, true);
    chart.resize();
    if (caption !== null) {
      caption.textContent = variant.caption;
    }
  }

  function schedule() {
    clearTimeout(timer);
    timer = setTimeout(render, payload.debounce);
  }

  render();
  new ResizeObserver(schedule).observe(el);
  media.addEventListener("change", schedule);
})();
</script>
</figure>
`))

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<pre class="chartembed-error" id="{{.ID}}"{{if .Error}} title="{{.Error}}"{{end}}>{{.Raw}}</pre>
`))

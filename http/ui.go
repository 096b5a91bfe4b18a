package http

import "net/http"

func (a *API) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(uiPage))
}

// uiPage is a minimal form over POST /predict, with the sample patient
// pre-filled.
const uiPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Heart Disease Predictor</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 2em auto; }
label { display: inline-block; width: 10em; }
.row { margin: 0.3em 0; }
#result { margin-top: 1em; font-weight: bold; }
</style>
</head>
<body>
<h1>Heart Disease Prediction</h1>
<p>Fill the fields below with typical clinical values, then predict.</p>
<form id="form"></form>
<button id="go">Predict</button>
<div id="result"></div>
<script>
const fields = [
  ["age", 54], ["sex", 1], ["cp", 0], ["trestbps", 140], ["chol", 239],
  ["fbs", 0], ["restecg", 1], ["thalach", 160], ["exang", 0],
  ["oldpeak", 1.2], ["slope", 2], ["ca", 0], ["thal", 2]
];
const form = document.getElementById("form");
for (const [name, value] of fields) {
  const row = document.createElement("div");
  row.className = "row";
  row.innerHTML = '<label for="' + name + '">' + name + '</label>' +
    '<input id="' + name + '" type="number" step="any" value="' + value + '">';
  form.appendChild(row);
}
document.getElementById("go").onclick = async () => {
  const body = {};
  for (const [name] of fields) {
    body[name] = parseFloat(document.getElementById(name).value);
  }
  const result = document.getElementById("result");
  try {
    const resp = await fetch("/predict", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body)
    });
    const data = await resp.json();
    if (!resp.ok) {
      result.textContent = "Error: " + JSON.stringify(data);
      return;
    }
    const verdict = data.prediction === 1 ? "Likely heart disease" : "Unlikely heart disease";
    result.textContent = verdict + " (probability " +
      data.probability.toFixed(2) + ", model " + data.model_version + ")";
  } catch (err) {
    result.textContent = "Request failed: " + err;
  }
};
</script>
</body>
</html>
`

package server

import (
	"net/http"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleAppJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(appJS))
}

func (s *Server) handleTutorial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(tutorialHTML))
}

const pageStyle = `
  <style>
    body { font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; margin: 18px; }
    .container { max-width: 585px; margin: 0 auto; }
    button { padding: 8px 12px; border-radius: 10px; border: 1px solid #111; background:#111; color:#fff; cursor:pointer;}
    button.secondary { background:#fff; color:#111; }
    button:disabled { opacity: 0.6; cursor: default; }
    .row { display:flex; gap:12px; align-items:center; padding: 8px; margin: 8px 0; border-radius: 8px; background: aliceblue; }
    .row.correct { background: palegreen; }
    .row.wrong { background: salmon; }
    .row .label { font-weight: 800; width: 1.5em; }
    .row input { width: 22px; height: 22px; }
    #result { min-height: 1.4em; font-weight: 600; }
    #citations { color:#444; font-size: 12px; }
    .mono { font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace; }
  </style>
`

const indexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <title>Spectrogram Quiz</title>
` + pageStyle + `
</head>
<body>
  <div class="container" id="maincontainer">
    <h1>Spectrogram Quiz</h1>
    <p id="firstParagraph"></p>
    <div>
      <button id="next" disabled>Loading...</button>
      <a href="/tutorial"><button class="secondary" id="tutorialbtn">Tutorial</button></a>
    </div>
    <div class="player" id="player"></div>
    <div id="rows"></div>
    <p id="result"></p>
    <div>
      <button class="secondary" id="citebtn" hidden>Citations</button>
      <div id="citations"></div>
    </div>
  </div>
  <script src="/app.js"></script>
</body>
</html>
`

const appJS = `
(function(){
  const nextBtn = document.getElementById('next');
  const firstParagraph = document.getElementById('firstParagraph');
  const playerEl = document.getElementById('player');
  const rowsEl = document.getElementById('rows');
  const resultEl = document.getElementById('result');
  const citeBtn = document.getElementById('citebtn');
  const citationsEl = document.getElementById('citations');

  let sessionId = null;
  let renderedRound = -1;

  async function api(method, path, body){
    const opts = { method, headers: { 'Accept': 'application/json' } };
    if (body !== undefined) {
      opts.headers['Content-Type'] = 'application/json';
      opts.body = JSON.stringify(body);
    }
    const res = await fetch(path, opts);
    const data = await res.json().catch(() => ({}));
    if (!res.ok && !data.nodes) {
      throw new Error(data.error || ('http ' + res.status));
    }
    return data;
  }

  function imageWidth(){
    const maxWidth = document.documentElement.clientWidth;
    return maxWidth < 600 ? Math.floor(maxWidth * 0.75) : 500;
  }

  function setControl(snap){
    nextBtn.textContent = snap.control_label;
    nextBtn.disabled = !(snap.status === 'ready' || snap.status === 'empty' || snap.status === 'error');
  }

  // Full rebuild when the round changes; otherwise patch row state in place.
  function apply(snap){
    setControl(snap);
    if (snap.error) console.error(snap.error);

    const nodes = snap.nodes || [];
    if (snap.round !== renderedRound) {
      playerEl.innerHTML = '';
      rowsEl.innerHTML = '';
      citationsEl.innerHTML = '';
      renderedRound = snap.round;
      for (const n of nodes) build(n);
    }
    for (const n of nodes) patch(n);
  }

  function build(n){
    switch (n.kind) {
      case 'player': {
        const audio = document.createElement('audio');
        audio.controls = true;
        audio.src = n.src;
        audio.autoplay = !!n.autoplay;
        playerEl.appendChild(audio);
        if (n.autoplay) audio.play().catch(err => console.warn('autoplay blocked', err));
        break;
      }
      case 'choice': {
        const row = document.createElement('div');
        row.className = 'row';
        row.id = n.id;
        const label = document.createElement('span');
        label.className = 'label';
        label.textContent = n.label;
        const img = document.createElement('img');
        img.src = n.src;
        img.width = imageWidth();
        img.alt = 'Spectrogram ' + n.label;
        const box = document.createElement('input');
        box.type = 'checkbox';
        box.id = n.label;
        box.addEventListener('change', () => select(n.label));
        row.appendChild(label);
        row.appendChild(img);
        row.appendChild(box);
        rowsEl.appendChild(row);
        break;
      }
      case 'citations':
        citeBtn.hidden = false;
        break;
    }
  }

  function patch(n){
    switch (n.kind) {
      case 'instructions':
        firstParagraph.textContent = n.text || '';
        break;
      case 'choice': {
        const row = document.getElementById(n.id);
        if (!row) return;
        row.className = 'row' + (n.tone && n.tone !== 'neutral' ? ' ' + n.tone : '');
        const box = document.getElementById(n.label);
        if (box) box.checked = !!n.checked;
        break;
      }
      case 'result':
        resultEl.textContent = n.text || '';
        break;
      case 'citations':
        citationsEl.innerHTML = '';
        for (const line of (n.lines || [])) {
          const p = document.createElement('p');
          p.textContent = line;
          citationsEl.appendChild(p);
        }
        break;
    }
  }

  async function select(label){
    try {
      apply(await api('POST', '/api/sessions/' + sessionId + '/select', { label }));
    } catch (e) {
      console.error(e);
    }
  }

  async function poll(){
    while (true) {
      const snap = await api('GET', '/api/sessions/' + sessionId);
      apply(snap);
      if (snap.status !== 'loading') return snap;
      await new Promise(r => setTimeout(r, 300));
    }
  }

  async function start(){
    renderedRound = -1;
    nextBtn.disabled = true;
    nextBtn.textContent = 'Loading...';
    try {
      const snap = await api('POST', '/api/sessions');
      sessionId = snap.id;
      await poll();
    } catch (e) {
      console.error(e);
    }
  }

  nextBtn.addEventListener('click', async () => {
    try {
      const cur = await api('GET', '/api/sessions/' + sessionId);
      if (cur.status === 'empty' || cur.status === 'error') {
        await api('DELETE', '/api/sessions/' + sessionId).catch(() => {});
        await start();
        return;
      }
      nextBtn.textContent = 'Loading...';
      apply(await api('POST', '/api/sessions/' + sessionId + '/next'));
    } catch (e) {
      console.error(e);
    }
  });

  citeBtn.addEventListener('click', async () => {
    try {
      await api('GET', '/api/sessions/' + sessionId + '/citations');
      apply(await api('GET', '/api/sessions/' + sessionId));
    } catch (e) {
      console.error(e);
    }
  });

  start();
})();
`

const tutorialHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <title>Spectrogram Quiz: Tutorial</title>
` + pageStyle + `
</head>
<body>
  <div class="container" id="tutorialContainer">
    <h1>Tutorial</h1>
    <h3>How to read spectrograms related to an audio signal?</h3>
    <p>The objective of the quiz is to connect an audio sample with the corresponding spectrogram.
    A spectrogram is a visualization of the frequencies present in a signal. Frequency is on the
    y-axis, from 0 Hz at the bottom to 15 kHz at the top. Time runs along the x-axis, from 0 seconds
    on the left edge to 10 seconds on the right edge. A birdsong shows up as a melody line of dark
    traces; the graph under the spectrogram is the envelope, showing how loud the signal is.</p>
    <p>A good first example is the willow warbler recording below: open it and follow the
    descending melody line on its spectrogram while the audio plays.</p>
    <p class="mono">Source: Lars Edenius, XC726708. Accessible at
      <a href="https://xeno-canto.org/726708">xeno-canto.org/726708</a>.
      <a href="https://creativecommons.org/licenses/by-nc-sa/4.0/">CC BY-NC-SA 4.0</a>.</p>
    <p>Listen for rhythm first: separate syllables appear as separate marks, trills as tight
    rows of marks, and whistles as smooth lines rising or falling with the pitch.</p>
    <p>Press "back" to test your spectrogram reading skills.</p>
    <a href="/"><button id="backToHome">Back</button></a>
  </div>
</body>
</html>
`

package notify

const digestHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Bullish scan {{.Date.Format "02 Jan 2006"}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #14532d 0%, #166534 100%);
      color: #ffffff;
    }

    .header-title {
      font-size: 20px;
      font-weight: 700;
      margin-bottom: 4px;
    }

    .header-sub {
      font-size: 13px;
      opacity: 0.85;
    }

    .entry {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .entry-head {
      font-size: 16px;
      font-weight: 700;
      margin-bottom: 2px;
    }

    .entry-title {
      font-size: 14px;
      color: #374151;
      margin-bottom: 8px;
    }

    .score-badge {
      display: inline-block;
      padding: 3px 10px;
      font-size: 12px;
      font-weight: 600;
      background: #dcfce7;
      color: #166534;
      border-radius: 4px;
      margin-right: 6px;
    }

    .verdict-badge {
      display: inline-block;
      padding: 3px 10px;
      font-size: 12px;
      font-weight: 600;
      background: #e0f2fe;
      color: #0369a1;
      border-radius: 4px;
    }

    .detail {
      font-size: 13px;
      color: #374151;
      margin-top: 8px;
    }

    .detail-label {
      font-weight: 600;
      color: #6b7280;
    }

    .pdf-link {
      display: inline-block;
      margin-top: 10px;
      padding: 8px 16px;
      font-size: 13px;
      font-weight: 600;
      color: #ffffff !important;
      background: #14532d;
      border-radius: 6px;
      text-decoration: none;
    }

    .empty {
      padding: 32px 24px;
      font-size: 14px;
      color: #6b7280;
      text-align: center;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="header-title">Bullish scan {{.Date.Format "02 Jan 2006"}}</div>
      <div class="header-sub">Profile: {{.Profile}} · {{len .Entries}} candidate(s)</div>
    </div>

    {{if not .Entries}}
    <div class="empty">No announcements qualified today.</div>
    {{end}}

    {{range .Entries}}
    <div class="entry">
      <div class="entry-head">#{{.Rank}} {{.Symbol}}</div>
      <div class="entry-title">{{.Title}}</div>

      <span class="score-badge">Score {{printf "%.2f" .Score}}</span>
      {{with .Assessment}}
      <span class="verdict-badge">{{.BullishScore}}/10 · {{.SurpriseLevel}} surprise · {{printf "%+.1f" .ExpectedDailyChangePct}}%</span>
      {{end}}

      {{if not .Published.IsZero}}
      <div class="detail"><span class="detail-label">Published:</span> {{.Published.Format "02 Jan 2006 3:04 PM"}}</div>
      {{end}}
      {{if .ShortInterest}}
      <div class="detail"><span class="detail-label">Short interest:</span> {{.ShortInterest}}</div>
      {{end}}

      {{with .Assessment}}
      {{if .Summary}}
      <div class="detail"><span class="detail-label">Summary:</span> {{.Summary}}</div>
      {{end}}
      {{if .FinancialImpact}}
      <div class="detail"><span class="detail-label">Impact:</span> {{.FinancialImpact}}</div>
      {{end}}
      {{if .Risks}}
      <div class="detail"><span class="detail-label">Risks:</span> {{.Risks}}</div>
      {{end}}
      {{if .Recommendation}}
      <div class="detail"><span class="detail-label">Stance:</span> {{.Recommendation}}</div>
      {{end}}
      {{end}}

      {{if .PDFURL}}
      <a href="{{.PDFURL}}" class="pdf-link" target="_blank" rel="noopener">View announcement →</a>
      {{end}}
    </div>
    {{end}}

    <div class="footer">asxwatch daily digest</div>
  </div>
</body>
</html>`

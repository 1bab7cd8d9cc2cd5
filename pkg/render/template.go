package render

const sadtTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<style>
  @page { size: A4; margin: 2cm; }
  body { font-family: Arial, Helvetica, sans-serif; font-size: 12px; color: #111; }
  h1 { font-size: 16px; text-align: center; margin-bottom: 0; }
  .number { text-align: center; font-size: 14px; font-weight: bold; margin-top: 4px; }
  .urgent { color: #b00; font-weight: bold; text-align: center; }
  .section { border: 1px solid #444; padding: 8px; margin-top: 10px; }
  .section h2 { font-size: 12px; margin: 0 0 6px 0; text-transform: uppercase; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #777; padding: 4px 6px; text-align: left; }
  th { background: #eee; }
  .footer { margin-top: 30px; display: flex; justify-content: space-between; }
  .signature { border-top: 1px solid #111; width: 45%; text-align: center; padding-top: 4px; }
</style>
</head>
<body>
  <h1>Solicitação de SADT — {{.Doc.Type}}</h1>
  <div class="number">Nº {{.Doc.Number}}</div>
  {{if .Doc.Urgent}}<div class="urgent">URGENTE</div>{{end}}

  <div class="section">
    <h2>Unidade Solicitante</h2>
    <div>{{.Doc.UnitName}} — CNES {{.Doc.UnitCNES}}</div>
    <div>{{.Doc.UnitAddress}} — {{.Doc.UnitCity}}/{{.Doc.UnitState}}</div>
    <div>Telefone: {{.Doc.UnitPhone}}</div>
  </div>

  <div class="section">
    <h2>Paciente</h2>
    <div>{{.Patient.Name}}{{if .Patient.SocialName}} ({{.Patient.SocialName}}){{end}}</div>
    <div>Nascimento: {{.Patient.BirthDate.Format "02/01/2006"}}{{if .Patient.CNS}} — CNS {{.Patient.CNS}}{{end}}</div>
    <div>Mãe: {{.Patient.MotherName}}</div>
  </div>

  <div class="section">
    <h2>Procedimentos</h2>
    <table>
      <tr><th>Código</th><th>Procedimento</th><th>Qtde</th><th>CID</th><th>Preparo</th></tr>
      {{range .Doc.Procedures}}
      <tr>
        <td>{{.Code}}</td>
        <td>{{.Name}}</td>
        <td>{{.Quantity}}</td>
        <td>{{.DiagnosisCode}}</td>
        <td>{{.Preparation}}</td>
      </tr>
      {{end}}
    </table>
  </div>

  {{if .Doc.Notes}}
  <div class="section">
    <h2>Observações</h2>
    <div>{{.Doc.Notes}}</div>
  </div>
  {{end}}

  <div class="footer">
    <div class="signature">
      {{.Doc.ProfessionalName}}<br>
      {{.Doc.ProfessionalCouncil}} {{.Doc.ProfessionalCouncilNo}}
    </div>
    <div class="signature">
      Emitido em {{.Doc.IssuedAt.Format "02/01/2006 15:04"}}
    </div>
  </div>
</body>
</html>`
